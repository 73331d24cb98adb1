package engine

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lookup walks path from keywords. It reports false when any step does not
// resolve, so the caller can leave the placeholder as written.
func lookup(keywords map[string]any, path []accessor) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current, ok := keywords[path[0].name]
	if !ok {
		return nil, false
	}
	for _, step := range path[1:] {
		current, ok = walk(current, step)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func walk(value any, step accessor) (any, bool) {
	if m, ok := value.(map[string]any); ok {
		v, ok := m[step.name]
		return v, ok
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return nil, false
	}
	if !step.indexed {
		if m, ok := method(v, step.name); ok {
			return m, true
		}
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return mapIndex(v, step.name)
	case reflect.Slice, reflect.Array, reflect.String:
		if !step.indexed {
			return nil, false
		}
		i, err := strconv.Atoi(step.name)
		if err != nil {
			return nil, false
		}
		if i < 0 {
			i += v.Len()
		}
		if i < 0 || i >= v.Len() {
			return nil, false
		}
		if v.Kind() == reflect.String {
			return string(v.String()[i]), true
		}
		return v.Index(i).Interface(), true
	case reflect.Struct:
		if step.indexed {
			return nil, false
		}
		f := v.FieldByName(exported(step.name))
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

func mapIndex(m reflect.Value, key string) (any, bool) {
	kt := m.Type().Key()
	var k reflect.Value
	switch kt.Kind() {
	case reflect.String:
		k = reflect.ValueOf(key).Convert(kt)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, false
		}
		k = reflect.ValueOf(n).Convert(kt)
	default:
		return nil, false
	}
	v := m.MapIndex(k)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// method calls a zero-argument exported method returning one value, or a
// value and a nil error.
func method(v reflect.Value, name string) (any, bool) {
	m := v.MethodByName(exported(name))
	if !m.IsValid() {
		return nil, false
	}
	t := m.Type()
	if t.NumIn() != 0 || t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, false
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return nil, false
	}
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, false
	}
	return out[0].Interface(), true
}

func exported(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	// snake_case attribute names map onto CamelCase Go fields.
	var b strings.Builder
	upper := true
	for _, c := range name {
		if c == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(c))
			upper = false
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

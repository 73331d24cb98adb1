package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Attrs is a component's normalized attribute bag. Values are strings, bools,
// numbers (json.Number from object-tree sources), []any lists or
// map[string]any objects, whichever the source format produced.
type Attrs map[string]any

// String returns the attribute as text. Numbers and booleans are
// formatted; objects and lists report false.
func (a Attrs) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return fmt.Sprint(t), true
	case json.Number:
		return t.String(), true
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprint(int64(t)), true
		}
		return fmt.Sprint(t), true
	case int, int64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// StringOr returns the attribute as text, or fallback when absent.
func (a Attrs) StringOr(key, fallback string) string {
	if s, ok := a.String(key); ok {
		return s
	}
	return fallback
}

// Has reports whether the attribute is present and non-nil.
func (a Attrs) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

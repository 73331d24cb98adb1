package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatSpec is a parsed [[fill]align][sign][width][,][.precision][type].
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	width     int
	grouping  bool
	precision int
	verb      byte
}

func parseSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	s := spec

	if r, size := utf8.DecodeRuneInString(s); size > 0 && len(s) > size && isAlign(s[size]) {
		fs.fill, fs.align = r, s[size]
		s = s[size+1:]
	} else if len(s) > 0 && isAlign(s[0]) {
		fs.align = s[0]
		s = s[1:]
	}
	if len(s) > 0 && (s[0] == '+' || s[0] == '-' || s[0] == ' ') {
		fs.sign = s[0]
		s = s[1:]
	}
	if len(s) > 0 && s[0] == '0' && fs.align == 0 {
		fs.fill, fs.align = '0', '='
		s = s[1:]
	}
	digits := leadingDigits(s)
	if digits > 0 {
		fs.width, _ = strconv.Atoi(s[:digits])
		s = s[digits:]
	}
	if len(s) > 0 && s[0] == ',' {
		fs.grouping = true
		s = s[1:]
	}
	if len(s) > 0 && s[0] == '.' {
		digits := leadingDigits(s[1:])
		if digits == 0 {
			return fs, fmt.Errorf("format spec %q: missing precision", spec)
		}
		fs.precision, _ = strconv.Atoi(s[1 : 1+digits])
		s = s[1+digits:]
	}
	switch {
	case s == "":
	case len(s) == 1 && strings.ContainsRune("sdfFeExXobg%", rune(s[0])):
		fs.verb = s[0]
	default:
		return fs, fmt.Errorf("format spec %q: unknown type %q", spec, s)
	}
	return fs, nil
}

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' || c == '=' }

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// formatValue renders value after an optional !conv and :spec.
func formatValue(value any, conv byte, spec string) (string, error) {
	switch conv {
	case 'r':
		value = fmt.Sprintf("%#v", value)
		if s, ok := value.(string); ok && strings.HasPrefix(s, `"`) {
			value = "'" + strings.Trim(s, `"`) + "'"
		}
	case 'a':
		value = strconv.QuoteToASCII(fmt.Sprint(value))
	case 's':
		value = fmt.Sprint(value)
	}
	if spec == "" {
		return fmt.Sprint(value), nil
	}

	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}
	body, numeric, err := fs.render(value)
	if err != nil {
		return "", err
	}
	return fs.pad(body, numeric), nil
}

func (fs formatSpec) render(value any) (string, bool, error) {
	switch fs.verb {
	case 0, 's':
		if _, isBool := value.(bool); fs.verb == 0 && !isBool {
			if f, ok := toFloat(value); ok && !isInteger(value) {
				return fs.float(f, 'g'), true, nil
			}
			if n, ok := toInt(value); ok {
				return fs.integer(n, 10), true, nil
			}
		}
		s := fmt.Sprint(value)
		if fs.precision >= 0 && utf8.RuneCountInString(s) > fs.precision {
			s = string([]rune(s)[:fs.precision])
		}
		return s, false, nil
	case 'd', 'x', 'X', 'o', 'b':
		n, ok := toInt(value)
		if !ok {
			return "", false, fmt.Errorf("type %q requires an integer, got %T", fs.verb, value)
		}
		base := map[byte]int{'d': 10, 'x': 16, 'X': 16, 'o': 8, 'b': 2}[fs.verb]
		s := fs.integer(n, base)
		if fs.verb == 'X' {
			s = strings.ToUpper(s)
		}
		return s, true, nil
	default:
		f, ok := toFloat(value)
		if !ok {
			return "", false, fmt.Errorf("type %q requires a number, got %T", fs.verb, value)
		}
		if fs.verb == '%' {
			if fs.precision < 0 {
				fs.precision = 6
			}
			return fs.float(f*100, 'f') + "%", true, nil
		}
		verb := fs.verb
		if verb == 'F' {
			verb = 'f'
		}
		if fs.precision < 0 && verb != 'g' {
			fs.precision = 6
		}
		return fs.float(f, verb), true, nil
	}
}

func (fs formatSpec) integer(n int64, base int) string {
	s := strconv.FormatInt(n, base)
	if fs.grouping && base == 10 {
		s = group(s)
	}
	return fs.signed(s, n >= 0)
}

func (fs formatSpec) float(f float64, verb byte) string {
	s := strconv.FormatFloat(f, verb, fs.precision, 64)
	if fs.grouping {
		whole, frac, _ := strings.Cut(s, ".")
		s = group(whole)
		if frac != "" {
			s += "." + frac
		}
	}
	return fs.signed(s, f >= 0)
}

func (fs formatSpec) signed(s string, positive bool) string {
	if positive {
		switch fs.sign {
		case '+':
			return "+" + s
		case ' ':
			return " " + s
		}
	}
	return s
}

func (fs formatSpec) pad(s string, numeric bool) string {
	n := utf8.RuneCountInString(s)
	if n >= fs.width {
		return s
	}
	fill := strings.Repeat(string(fs.fill), fs.width-n)
	align := fs.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	switch align {
	case '>':
		return fill + s
	case '^':
		half := (fs.width - n) / 2
		left := strings.Repeat(string(fs.fill), half)
		right := strings.Repeat(string(fs.fill), fs.width-n-half)
		return left + s + right
	case '=':
		if len(s) > 0 && (s[0] == '-' || s[0] == '+' || s[0] == ' ') {
			return s[:1] + fill + s[1:]
		}
		return fill + s
	default:
		return s + fill
	}
}

func group(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		if _, isBool := v.(bool); !isBool {
			return float64(i), true
		}
	}
	return 0, false
}

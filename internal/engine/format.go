package engine

import (
	"fmt"
	"strings"
)

// Format is the brace-placeholder engine.
//
// A placeholder is {field[!conv][:spec]} where field is an identifier
// followed by any number of .attr and [index] accessors. Doubled braces
// are copied through untouched, which keeps repeated passes stable:
// Template(Template(d, nil), nil) == Template(d, nil).
type Format struct{}

func (Format) Template(document string, keywords map[string]any) (string, error) {
	if !strings.Contains(document, "{") {
		return document, nil
	}

	var b strings.Builder
	b.Grow(len(document))

	for i := 0; i < len(document); {
		c := document[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(document) && document[i+1] == '{' {
			b.WriteString("{{")
			i += 2
			continue
		}

		p, end, ok := scanPlaceholder(document, i)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}
		raw := document[i:end]
		i = end

		value, found := lookup(keywords, p.path)
		if !found {
			b.WriteString(raw)
			continue
		}
		s, err := formatValue(value, p.conv, p.spec)
		if err != nil {
			return "", fmt.Errorf("engine: placeholder %s: %w", raw, err)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// placeholder is one parsed {field!conv:spec} occurrence.
type placeholder struct {
	path []accessor
	conv byte
	spec string
}

// accessor is one step of a field path: the root name, an .attr, or an [index].
type accessor struct {
	name    string
	indexed bool
}

// scanPlaceholder parses the placeholder opening at document[start]. It
// returns the parsed placeholder and the offset just past its closing brace.
func scanPlaceholder(document string, start int) (placeholder, int, bool) {
	var p placeholder
	i := start + 1

	name, n := scanIdent(document[i:])
	if n == 0 {
		return p, 0, false
	}
	p.path = append(p.path, accessor{name: name})
	i += n

	for i < len(document) {
		switch document[i] {
		case '.':
			name, n := scanIdent(document[i+1:])
			if n == 0 {
				return p, 0, false
			}
			p.path = append(p.path, accessor{name: name})
			i += 1 + n
			continue
		case '[':
			closing := strings.IndexByte(document[i:], ']')
			if closing < 2 {
				return p, 0, false
			}
			index := document[i+1 : i+closing]
			if strings.ContainsAny(index, "{}") {
				return p, 0, false
			}
			p.path = append(p.path, accessor{name: unquote(index), indexed: true})
			i += closing + 1
			continue
		}
		break
	}

	if i < len(document) && document[i] == '!' {
		if i+1 >= len(document) || !strings.ContainsRune("sra", rune(document[i+1])) {
			return p, 0, false
		}
		p.conv = document[i+1]
		i += 2
	}

	if i < len(document) && document[i] == ':' {
		closing := strings.IndexAny(document[i:], "{}")
		if closing < 0 || document[i+closing] != '}' {
			return p, 0, false
		}
		p.spec = document[i+1 : i+closing]
		i += closing
	}

	if i >= len(document) || document[i] != '}' {
		return p, 0, false
	}
	return p, i + 1, true
}

func scanIdent(s string) (string, int) {
	n := 0
	for n < len(s) {
		c := s[n]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && n > 0:
		default:
			return s[:n], n
		}
		n++
	}
	return s[:n], n
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Package jsonsrc reads object-tree template sources: a single object keyed
// by element name, each element carrying an explicit "type". JSON (with
// comments and trailing commas) and YAML spell the same tree.
package jsonsrc

import (
	"bytes"
	"encoding/json"

	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Parser parses object-tree documents. A zero Parser reads JSON.
type Parser struct {
	Format source.Format
}

func (p Parser) Parse(raw []byte) (source.Document, error) {
	var (
		v   any
		err error
	)
	if p.Format == source.FormatYAML {
		v, err = decodeYAML(raw)
	} else {
		v, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, err
	}
	root, ok := v.(Object)
	if !ok {
		return nil, tmplerr.New(tmplerr.Parse, "top-level value must be an object keyed by element name")
	}
	return &Document{root: root}, nil
}

// Document is a parsed object-tree source.
type Document struct {
	root Object
}

func (d *Document) Lookup(key string) (source.Fragment, error) {
	v, ok := d.root.Get(key)
	if !ok {
		return nil, source.NotFound(key)
	}
	return &Fragment{key: key, value: v}, nil
}

func (d *Document) Keys() []string { return d.root.Keys() }

// Fragment is one top-level value.
type Fragment struct {
	key   string
	value any
}

func (f *Fragment) Key() string { return f.key }

// Value exposes the ordered tree.
func (f *Fragment) Value() any { return f.value }

// Template returns a copy with every string value and object key passed
// through eng.
func (f *Fragment) Template(eng engine.Engine, keywords map[string]any) (source.Fragment, error) {
	v, err := templateValue(f.value, eng, keywords)
	if err != nil {
		return nil, err
	}
	return &Fragment{key: f.key, value: v}, nil
}

func templateValue(v any, eng engine.Engine, keywords map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		return eng.Template(t, keywords)
	case Object:
		out := make(Object, 0, len(t))
		for _, m := range t {
			k, err := eng.Template(m.Key, keywords)
			if err != nil {
				return nil, err
			}
			val, err := templateValue(m.Value, eng, keywords)
			if err != nil {
				return nil, err
			}
			out = out.set(k, val)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			val, err := templateValue(item, eng, keywords)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	}
	return v, nil
}

func (f *Fragment) String() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.value); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

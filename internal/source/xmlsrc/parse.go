// Package xmlsrc reads tag-tree template sources. Each child of the root
// element is one template, found by its key attribute; its tag names the
// flavor (message, embed, expansive, menu, modal).
package xmlsrc

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// keyAttrs are the attributes that name a top-level element, in priority order.
var keyAttrs = []string{"key", "name"}

// Parser parses XML template documents.
type Parser struct{}

func (Parser) Parse(raw []byte) (source.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, tmplerr.Wrap(tmplerr.Parse, err, "xml source")
	}
	root := doc.Root()
	if root == nil {
		return nil, tmplerr.New(tmplerr.Parse, "xml source has no root element")
	}
	return &Document{root: root}, nil
}

// Document is a parsed XML source.
type Document struct {
	root *etree.Element
}

func (d *Document) Lookup(key string) (source.Fragment, error) {
	// A lone element with a key can be the root itself.
	if keyOf(d.root) == key {
		return &Fragment{key: key, el: d.root}, nil
	}
	for _, child := range d.root.ChildElements() {
		if keyOf(child) == key {
			return &Fragment{key: key, el: child}, nil
		}
	}
	return nil, source.NotFound(key)
}

func (d *Document) Keys() []string {
	if k := keyOf(d.root); k != "" {
		return []string{k}
	}
	var keys []string
	for _, child := range d.root.ChildElements() {
		if k := keyOf(child); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func keyOf(el *etree.Element) string {
	for _, name := range keyAttrs {
		if a := el.SelectAttr(name); a != nil {
			return a.Value
		}
	}
	return ""
}

// Fragment is one top-level XML element.
type Fragment struct {
	key string
	el  *etree.Element
}

func (f *Fragment) Key() string { return f.key }

// Template copies the element and runs every attribute value and text node
// through eng.
func (f *Fragment) Template(eng engine.Engine, keywords map[string]any) (source.Fragment, error) {
	el := f.el.Copy()
	if err := templateElement(el, eng, keywords); err != nil {
		return nil, err
	}
	return &Fragment{key: f.key, el: el}, nil
}

func templateElement(el *etree.Element, eng engine.Engine, keywords map[string]any) error {
	for i := range el.Attr {
		v, err := eng.Template(el.Attr[i].Value, keywords)
		if err != nil {
			return err
		}
		el.Attr[i].Value = v
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			v, err := eng.Template(t.Data, keywords)
			if err != nil {
				return err
			}
			t.Data = v
		case *etree.Element:
			if err := templateElement(t, eng, keywords); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Fragment) String() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(f.el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Element exposes the underlying tree for callers that need it.
func (f *Fragment) Element() *etree.Element { return f.el }

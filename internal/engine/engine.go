// Package engine substitutes keyword values into raw template text.
//
// Two engines are provided. [Format] understands brace placeholders
// ({name}, {user.name}, {items[0]:>8}) and leaves every placeholder it
// cannot resolve exactly as written, so a later pass (or a literal brace
// in the source) survives. [Logic] runs the text through text/template for
// templates that need conditionals and loops. Both satisfy [Engine], and
// nothing downstream depends on which one is in use.
package engine

import "fmt"

// Engine fills placeholders in document with values from keywords.
// Implementations must not fail on placeholders naming absent keys; those
// are left in place.
type Engine interface {
	Template(document string, keywords map[string]any) (string, error)
}

// Func adapts a plain function to Engine.
type Func func(document string, keywords map[string]any) (string, error)

func (f Func) Template(document string, keywords map[string]any) (string, error) {
	return f(document, keywords)
}

// Name selects a built-in engine.
type Name string

const (
	NameFormat Name = "format"
	NameLogic  Name = "logic"
)

// New returns the built-in engine registered under name.
func New(name Name) (Engine, error) {
	switch name {
	case NameFormat, "":
		return Format{}, nil
	case NameLogic:
		return Logic{}, nil
	default:
		return nil, fmt.Errorf("engine: unknown engine %q", name)
	}
}

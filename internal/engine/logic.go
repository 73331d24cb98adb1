package engine

import (
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"
	"unicode"
)

// Logic renders documents with text/template. Field reads and index calls
// that do not resolve against the keywords are written back verbatim so
// they survive for a later pass, matching Format's contract.
type Logic struct {
	// Funcs extends the default function map.
	Funcs template.FuncMap
}

func (l Logic) Template(document string, keywords map[string]any) (string, error) {
	if !strings.Contains(document, "{{") {
		return document, nil
	}

	funcs := template.FuncMap{
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"title":   titleCase,
		"join":    join,
		"default": defaultValue,
	}
	for name, fn := range l.Funcs {
		funcs[name] = fn
	}

	t, err := template.New("document").Funcs(funcs).Option("missingkey=zero").Parse(document)
	if err != nil {
		return "", fmt.Errorf("engine: parsing logic template: %w", err)
	}
	if t.Tree != nil {
		keepMissing(t.Tree.Root, keywords)
	}

	var b strings.Builder
	if err := t.Execute(&b, keywords); err != nil {
		return "", fmt.Errorf("engine: executing logic template: %w", err)
	}
	return b.String(), nil
}

// keepMissing replaces actions that read values absent from the keywords
// with text nodes holding the action's source form. Range and with bodies
// rebind dot, so only their else branches are checked.
func keepMissing(list *parse.ListNode, keywords map[string]any) {
	if list == nil {
		return
	}
	for i, node := range list.Nodes {
		switch n := node.(type) {
		case *parse.ActionNode:
			if unresolved(n.Pipe, keywords) {
				list.Nodes[i] = &parse.TextNode{NodeType: parse.NodeText, Pos: n.Pos, Text: []byte(n.String())}
			}
		case *parse.IfNode:
			keepMissing(n.List, keywords)
			keepMissing(n.ElseList, keywords)
		case *parse.RangeNode:
			keepMissing(n.ElseList, keywords)
		case *parse.WithNode:
			keepMissing(n.ElseList, keywords)
		}
	}
}

// unresolved reports whether pipe is a bare field read such as
// {{.user.name}}, or an index call such as {{index .items 3}}, that does
// not resolve against keywords. Other pipelines run normally so helpers
// like default can supply a fallback.
func unresolved(pipe *parse.PipeNode, keywords map[string]any) bool {
	if pipe == nil || len(pipe.Decl) > 0 || len(pipe.Cmds) != 1 {
		return false
	}
	args := pipe.Cmds[0].Args
	switch {
	case len(args) == 1:
		field, ok := args[0].(*parse.FieldNode)
		if !ok {
			return false
		}
		_, found := lookup(keywords, fieldPath(field))
		return !found
	case len(args) >= 2:
		if id, ok := args[0].(*parse.IdentifierNode); !ok || id.Ident != "index" {
			return false
		}
		field, ok := args[1].(*parse.FieldNode)
		if !ok {
			return false
		}
		path := fieldPath(field)
		for _, arg := range args[2:] {
			switch a := arg.(type) {
			case *parse.NumberNode:
				path = append(path, accessor{name: a.Text, indexed: true})
			case *parse.StringNode:
				path = append(path, accessor{name: a.Text, indexed: true})
			default:
				return false
			}
		}
		_, found := lookup(keywords, path)
		return !found
	}
	return false
}

func fieldPath(f *parse.FieldNode) []accessor {
	path := make([]accessor, len(f.Ident))
	for i, name := range f.Ident {
		path[i] = accessor{name: name}
	}
	return path
}

func titleCase(s string) string {
	var b strings.Builder
	start := true
	for _, r := range s {
		if start {
			r = unicode.ToTitle(r)
		}
		start = unicode.IsSpace(r)
		b.WriteRune(r)
	}
	return b.String()
}

func join(sep string, items any) string {
	switch v := items.(type) {
	case []string:
		return strings.Join(v, sep)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(items)
	}
}

func defaultValue(fallback, value any) any {
	if value == nil || value == "" {
		return fallback
	}
	return value
}

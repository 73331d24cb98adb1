// Package source defines how template documents are read. A [Parser] turns
// raw source text into a [Document]; a Document hands out [Fragment]s by
// key; a Fragment can be templated, serialized back to text, and decoded
// into the normalized model. The xmlsrc and jsonsrc subpackages are the two
// implementations.
package source

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Format names a source syntax.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parser reads raw source text.
type Parser interface {
	Parse(raw []byte) (Document, error)
}

// Document is a parsed source: a keyed set of element definitions. It is
// immutable once parsed.
type Document interface {
	// Lookup returns the element stored under key, or a NotFound error.
	Lookup(key string) (Fragment, error)
	// Keys lists the top-level keys in document order.
	Keys() []string
}

// Fragment is one located element, not yet interpreted.
type Fragment interface {
	Key() string
	// Template returns a copy of the fragment with every text value passed
	// through eng. The receiver is not modified.
	Template(eng engine.Engine, keywords map[string]any) (Fragment, error)
	// Decode interprets the fragment as a model element.
	Decode() (*model.Element, error)
	// String serializes the fragment back to source text.
	String() (string, error)
}

// NotFound is the error Lookup returns for an absent key.
func NotFound(key string) error {
	return tmplerr.New(tmplerr.NotFound, "no element with key %q", key)
}

// Detect picks a format from a file name, falling back to sniffing the
// first significant byte of raw.
func Detect(name string, raw []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return FormatXML
	case ".json", ".jsonc":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatXML
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("//")), bytes.HasPrefix(trimmed, []byte("/*")):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXML, FormatJSON, FormatYAML:
		return f, nil
	case "jsonc":
		return FormatJSON, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", tmplerr.New(tmplerr.Validation, "unknown source format %q", s)
	}
}

// Dedent strips the common leading indentation from every line of s and
// trims surrounding blank lines, so indented multi-line text in a source
// file reads as written.
func Dedent(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = strings.TrimRight(l[indent:], " \t")
		} else {
			lines[i] = strings.TrimSpace(l)
		}
	}
	return strings.Join(lines, "\n")
}

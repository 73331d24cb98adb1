// Package render is the pipeline from template source to UI objects:
// parse, locate the key, substitute keywords, decode, then build messages,
// menus or modals with the caller's callbacks and event handlers.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/embed"
	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/source/jsonsrc"
	"github.com/lojasmm/cartaz/internal/source/xmlsrc"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Order decides when keywords are substituted.
type Order int

const (
	// PerKey parses first, then templates only the located element.
	PerKey Order = iota
	// WholeDocument templates the raw source text, then parses it.
	WholeDocument
)

func (o Order) String() string {
	if o == WholeDocument {
		return "whole-document"
	}
	return "per-key"
}

// ParseOrder accepts "per-key" and "whole-document".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per-key", "per_key", "perkey":
		return PerKey, nil
	case "whole-document", "whole_document", "document":
		return WholeDocument, nil
	}
	return 0, fmt.Errorf("render: unknown template order %q", s)
}

// Result is what Render returns: *ui.Message, *menu.Menu or *ui.Modal.
type Result interface {
	Kind() model.Kind
}

// Options tune a Renderer. The zero value renders with the format engine,
// per-key ordering and default timeouts.
type Options struct {
	// Format of the source; empty detects it from Name and the content.
	Format source.Format
	// Name is the source file name, used only for format detection.
	Name            string
	Engine          engine.Engine
	Order           Order
	TimestampFormat string
	// ViewTimeout applies to views, menus and modals that set none.
	ViewTimeout time.Duration
}

// Renderer renders elements from one template source. The source is parsed
// on every call; nothing is cached between renders.
type Renderer struct {
	raw    []byte
	format source.Format
	parser source.Parser
	opts   Options
}

// ParserFor returns the parser for a source format.
func ParserFor(f source.Format) (source.Parser, error) {
	switch f {
	case source.FormatXML:
		return xmlsrc.Parser{}, nil
	case source.FormatJSON, source.FormatYAML:
		return jsonsrc.Parser{Format: f}, nil
	}
	return nil, tmplerr.New(tmplerr.Validation, "unsupported source format %q", f)
}

// New returns a renderer over raw.
func New(raw []byte, opts Options) (*Renderer, error) {
	format := opts.Format
	if format == "" {
		format = source.Detect(opts.Name, raw)
	}
	p, err := ParserFor(format)
	if err != nil {
		return nil, err
	}
	if opts.Engine == nil {
		opts.Engine = engine.Format{}
	}
	return &Renderer{raw: raw, format: format, parser: p, opts: opts}, nil
}

// Format reports the source format in use.
func (r *Renderer) Format() source.Format { return r.format }

// Keys lists the top-level keys of the untemplated source.
func (r *Renderer) Keys() ([]string, error) {
	doc, err := r.parser.Parse(r.raw)
	if err != nil {
		return nil, err
	}
	return doc.Keys(), nil
}

// Render builds the element stored under key. callables maps component
// keys to callbacks; keywords fill placeholders; events fills the event
// table shared by every view the element produces. All three may be nil.
func (r *Renderer) Render(key string, callables component.Callables, keywords map[string]any, events map[ui.EventKind]any) (Result, error) {
	if keywords == nil {
		keywords = map[string]any{}
	}
	evs, err := ui.NewEvents(events)
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Validation, err, "event handlers")
	}

	doc, err := r.document(keywords)
	if err != nil {
		return nil, err
	}
	pl := &pipeline{
		r:         r,
		doc:       doc,
		keywords:  keywords,
		callables: callables,
		events:    evs,
		assembler: component.Assembler{Timeout: r.opts.ViewTimeout},
		embeds:    embed.Builder{TimestampFormat: r.opts.TimestampFormat},
		visiting:  map[string]bool{},
	}
	el, err := pl.element(key)
	if err != nil {
		return nil, err
	}
	return pl.build(el)
}

func (r *Renderer) document(keywords map[string]any) (source.Document, error) {
	if r.opts.Order != WholeDocument {
		return r.parser.Parse(r.raw)
	}
	text, err := r.opts.Engine.Template(string(r.raw), keywords)
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Validation, err, "templating source")
	}
	return r.parser.Parse([]byte(text))
}

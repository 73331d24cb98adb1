// Package menu chains rendered pages into one paginated message with
// previous/next arrows and tracks which page is showing.
package menu

import (
	"context"
	"time"

	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Arrows are the attribute bags the navigation buttons are built from.
type Arrows struct {
	Previous model.Attrs
	Next     model.Attrs
}

// DefaultArrows is an emoji-only pair.
func DefaultArrows() Arrows {
	return Arrows{
		Previous: model.Attrs{"emoji": "⬅️", "style": "secondary"},
		Next:     model.Attrs{"emoji": "➡️", "style": "secondary"},
	}
}

// Menu is the runtime state of a paginated message. It is mutated only by
// its own navigation callbacks and must not be driven from two
// interactions at once.
type Menu struct {
	pages   []*ui.Message
	timeout time.Duration
	active  int
	front   int
	arrows  Arrows
	events  *ui.Events
}

// New links pages into a menu. Nil arrow bags fall back to the defaults.
func New(pages []*ui.Message, timeout time.Duration, arrows Arrows, events *ui.Events) (*Menu, error) {
	def := DefaultArrows()
	if arrows.Previous == nil {
		arrows.Previous = def.Previous
	}
	if arrows.Next == nil {
		arrows.Next = def.Next
	}
	if events == nil {
		events = &ui.Events{}
	}
	m := &Menu{pages: pages, timeout: timeout, arrows: arrows, events: events}
	if err := m.Link(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Menu) Kind() model.Kind { return model.KindMenu }

func (m *Menu) Len() int               { return len(m.pages) }
func (m *Menu) ActivePage() int        { return m.active }
func (m *Menu) FrontPage() int         { return m.front }
func (m *Menu) Pages() []*ui.Message   { return m.pages }
func (m *Menu) Timeout() time.Duration { return m.timeout }
func (m *Menu) Events() *ui.Events     { return m.events }

// Page returns page i.
func (m *Menu) Page(i int) (*ui.Message, error) {
	if i < 0 || i >= len(m.pages) {
		return nil, tmplerr.New(tmplerr.IndexOutOfRange, "page %d of %d", i, len(m.pages))
	}
	return m.pages[i], nil
}

// Front is the page sent first.
func (m *Menu) Front() *ui.Message {
	if len(m.pages) == 0 {
		return nil
	}
	return m.pages[m.front]
}

// SetFrontPage picks the page sent first. It does not move the active page.
func (m *Menu) SetFrontPage(i int) error {
	if i < 0 || i >= len(m.pages) {
		return tmplerr.New(tmplerr.IndexOutOfRange, "front page %d of %d", i, len(m.pages))
	}
	m.front = i
	return nil
}

// SetPages replaces the pages and links them again.
func (m *Menu) SetPages(pages []*ui.Message) error {
	m.pages = pages
	if m.active >= len(pages) {
		m.active = 0
	}
	if m.front >= len(pages) {
		m.front = 0
	}
	return m.Link()
}

// Link gives every page its navigation arrows: previous unless it is the
// first page, next unless it is the last. Arrows from an earlier Link are
// dropped first, so linking twice changes nothing.
func (m *Menu) Link() error {
	for i, page := range m.pages {
		if page.View == nil {
			page.View = ui.NewView(m.timeout, m.events)
		}
		page.View.RemoveIf(func(it *ui.Item) bool { return it.Nav })
		page.View.SetTimeout(m.timeout)
		page.View.SetEvents(m.events)

		if i > 0 {
			if err := m.addArrow(page.View, "previous", m.arrows.Previous, i-1); err != nil {
				return err
			}
		}
		if i+1 < len(m.pages) {
			if err := m.addArrow(page.View, "next", m.arrows.Next, i+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Menu) addArrow(v *ui.View, key string, attrs model.Attrs, target int) error {
	// Arrow ids must be unique across pages.
	attrs = attrs.Clone()
	delete(attrs, "custom_id")
	delete(attrs, "url")

	it, err := component.Build(string(component.KindButton), key, attrs, nil, func(ctx context.Context, in *ui.Interaction) error {
		return m.Navigate(ctx, in, target)
	})
	if err != nil {
		return err
	}
	it.Nav = true
	v.Add(it)
	return nil
}

// Navigate shows page target in place of the current one, makes it active
// and fires on_change.
func (m *Menu) Navigate(ctx context.Context, in *ui.Interaction, target int) error {
	page, err := m.Page(target)
	if err != nil {
		return err
	}
	if in != nil && in.Responder != nil {
		if err := in.Responder.EditMessage(ctx, page); err != nil {
			return err
		}
	}
	m.active = target
	m.events.Change(ctx, m)
	return nil
}

// Items lists the items of every page, so one registration covers the
// whole menu.
func (m *Menu) Items() []*ui.Item {
	var items []*ui.Item
	for _, p := range m.pages {
		if p.View != nil {
			items = append(items, p.View.Items()...)
		}
	}
	return items
}

// Dispatch routes an interaction to the page holding its item, trying the
// active page first.
func (m *Menu) Dispatch(ctx context.Context, in *ui.Interaction) error {
	if len(m.pages) == 0 {
		return ui.ErrUnknownItem
	}
	order := append([]int{m.active}, indexes(len(m.pages), m.active)...)
	for _, i := range order {
		v := m.pages[i].View
		if v != nil && v.Find(in.CustomID) != nil {
			return v.Dispatch(ctx, in)
		}
	}
	return ui.ErrUnknownItem
}

func indexes(n, skip int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != skip {
			out = append(out, i)
		}
	}
	return out
}

package ui

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

const (
	// MaxRows is the number of action rows a message or modal can carry.
	MaxRows = 5
	// RowWidth is the room in one action row: five buttons, or one select.
	RowWidth = 5
)

// ErrUnknownItem is returned by Dispatch for a custom id the container
// does not hold.
var ErrUnknownItem = errors.New("ui: no item with that custom id")

// Container is a view or a modal: something interactions dispatch into.
type Container interface {
	Items() []*Item
	Timeout() time.Duration
	Events() *Events
	Dispatch(ctx context.Context, in *Interaction) error
}

// Item is one built component with its callback.
type Item struct {
	// Key is the template key the callback was looked up by.
	Key string
	// Component is *discordgo.Button, *discordgo.SelectMenu or
	// *discordgo.TextInput.
	Component discordgo.MessageComponent
	// Row pins the item to an action row; -1 lets it flow.
	Row      int
	Callback Callback
	// Nav marks menu navigation arrows.
	Nav bool
}

// CustomID returns the id interactions on this item carry, or "" for link
// buttons.
func (it *Item) CustomID() string {
	switch c := it.Component.(type) {
	case *discordgo.Button:
		return c.CustomID
	case *discordgo.SelectMenu:
		return c.CustomID
	case *discordgo.TextInput:
		return c.CustomID
	}
	return ""
}

// Width is how much of an action row the item takes.
func (it *Item) Width() int {
	if _, ok := it.Component.(*discordgo.Button); ok {
		return 1
	}
	return RowWidth
}

// View is an ordered set of items attached to a message.
type View struct {
	items   []*Item
	timeout time.Duration
	events  *Events
}

// NewView returns an empty view. A zero timeout never expires; a nil
// events table means defaults everywhere.
func NewView(timeout time.Duration, events *Events) *View {
	if events == nil {
		events = &Events{}
	}
	return &View{timeout: timeout, events: events}
}

func (v *View) Add(it *Item)               { v.items = append(v.items, it) }
func (v *View) Items() []*Item             { return v.items }
func (v *View) Timeout() time.Duration     { return v.timeout }
func (v *View) SetTimeout(d time.Duration) { v.timeout = d }
func (v *View) Events() *Events            { return v.events }
func (v *View) SetEvents(e *Events)        { v.events = e }
func (v *View) Len() int                   { return len(v.items) }

// RemoveIf drops every item matching fn, keeping the order of the rest.
func (v *View) RemoveIf(fn func(*Item) bool) {
	kept := v.items[:0]
	for _, it := range v.items {
		if !fn(it) {
			kept = append(kept, it)
		}
	}
	for i := len(kept); i < len(v.items); i++ {
		v.items[i] = nil
	}
	v.items = kept
}

// Find returns the item with the given custom id.
func (v *View) Find(customID string) *Item {
	return find(v.items, customID)
}

func find(items []*Item, customID string) *Item {
	if customID == "" {
		return nil
	}
	for _, it := range items {
		if it.CustomID() == customID {
			return it
		}
	}
	return nil
}

// Dispatch runs the check gate, then the item's callback. A callback
// failure goes to on_error and is not returned.
func (v *View) Dispatch(ctx context.Context, in *Interaction) error {
	it := v.Find(in.CustomID)
	if it == nil {
		return ErrUnknownItem
	}
	if !v.events.Check(ctx, v, in) {
		return nil
	}
	if it.Callback == nil {
		return nil
	}
	if err := it.Callback(ctx, in); err != nil {
		v.events.Error(ctx, v, in, err, it)
	}
	return nil
}

// Rows lays the items out into action rows. Pinned items go to their row;
// the rest take the first row with room, in order.
func (v *View) Rows() ([]discordgo.MessageComponent, error) {
	return layout(v.items)
}

func layout(items []*Item) ([]discordgo.MessageComponent, error) {
	if len(items) == 0 {
		return nil, nil
	}
	var (
		rows  [MaxRows][]discordgo.MessageComponent
		width [MaxRows]int
	)
	for _, it := range items {
		w := it.Width()
		switch {
		case it.Row >= MaxRows:
			return nil, tmplerr.New(tmplerr.Validation, "item %q row %d is out of range", it.Key, it.Row)
		case it.Row >= 0:
			if width[it.Row]+w > RowWidth {
				return nil, tmplerr.New(tmplerr.Validation, "item %q does not fit in row %d", it.Key, it.Row)
			}
			rows[it.Row] = append(rows[it.Row], it.Component)
			width[it.Row] += w
		default:
			placed := false
			for r := 0; r < MaxRows; r++ {
				if width[r]+w <= RowWidth {
					rows[r] = append(rows[r], it.Component)
					width[r] += w
					placed = true
					break
				}
			}
			if !placed {
				return nil, tmplerr.New(tmplerr.Validation, "too many components: %q does not fit in %d rows", it.Key, MaxRows)
			}
		}
	}
	var out []discordgo.MessageComponent
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, discordgo.ActionsRow{Components: r})
		}
	}
	return out, nil
}

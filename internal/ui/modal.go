package ui

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
)

// Modal is a form of text inputs.
type Modal struct {
	Title    string
	CustomID string

	items   []*Item
	timeout time.Duration
	events  *Events
}

func NewModal(title, customID string, timeout time.Duration, events *Events) *Modal {
	if events == nil {
		events = &Events{}
	}
	return &Modal{Title: title, CustomID: customID, timeout: timeout, events: events}
}

func (m *Modal) Kind() model.Kind { return model.KindModal }

func (m *Modal) Add(it *Item)           { m.items = append(m.items, it) }
func (m *Modal) Items() []*Item         { return m.items }
func (m *Modal) Timeout() time.Duration { return m.timeout }
func (m *Modal) Events() *Events        { return m.events }

// Dispatch handles a submit: the check gate, then each input's callback,
// then on_submit. Failures go to on_error.
func (m *Modal) Dispatch(ctx context.Context, in *Interaction) error {
	if !m.events.Check(ctx, m, in) {
		return nil
	}
	for _, it := range m.items {
		if it.Callback == nil {
			continue
		}
		if _, ok := in.Fields[it.CustomID()]; !ok {
			continue
		}
		if err := it.Callback(ctx, in); err != nil {
			m.events.Error(ctx, m, in, err, it)
			return nil
		}
	}
	if err := m.events.Submit(ctx, m, in); err != nil {
		m.events.Error(ctx, m, in, err, nil)
	}
	return nil
}

// Value returns the submitted value of the input built from key.
func (m *Modal) Value(in *Interaction, key string) (string, bool) {
	for _, it := range m.items {
		if it.Key == key {
			v, ok := in.Fields[it.CustomID()]
			return v, ok
		}
	}
	return "", false
}

// ResponseData is the modal as an interaction response payload. Each text
// input gets its own row.
func (m *Modal) ResponseData() (*discordgo.InteractionResponseData, error) {
	rows, err := layout(m.items)
	if err != nil {
		return nil, err
	}
	return &discordgo.InteractionResponseData{
		CustomID:   m.CustomID,
		Title:      m.Title,
		Components: rows,
	}, nil
}

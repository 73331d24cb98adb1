package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func button(id string, row int, cb Callback) *Item {
	return &Item{Key: id, Component: &discordgo.Button{CustomID: id, Label: id}, Row: row, Callback: cb}
}

func selectItem(id string) *Item {
	return &Item{Key: id, Component: &discordgo.SelectMenu{CustomID: id}, Row: -1}
}

func TestEventsDefaults(t *testing.T) {
	var e *Events
	ctx := context.Background()
	in := &Interaction{CustomID: "x"}

	assert.True(t, e.Check(ctx, nil, in))
	assert.NoError(t, e.Submit(ctx, nil, in))
	assert.False(t, e.Has(EventTimeout))
	e.Timeout(ctx, nil)
	e.Change(ctx, nil)
	e.Error(ctx, nil, in, errors.New("boom"), nil)
}

func TestNewEventsTyped(t *testing.T) {
	fired := 0
	e, err := NewEvents(map[EventKind]any{
		EventTimeout: func(context.Context, Container) { fired++ },
		EventCheck:   CheckFunc(func(context.Context, Container, *Interaction) bool { return false }),
	})
	require.NoError(t, err)
	e.Timeout(context.Background(), nil)
	assert.Equal(t, 1, fired)
	assert.False(t, e.Check(context.Background(), nil, &Interaction{}))

	_, err = NewEvents(map[EventKind]any{EventChange: func() {}})
	assert.Error(t, err)
}

func TestParseEventKind(t *testing.T) {
	k, ok := ParseEventKind("timeout")
	assert.True(t, ok)
	assert.Equal(t, EventTimeout, k)
	k, ok = ParseEventKind("on_submit")
	assert.True(t, ok)
	assert.Equal(t, EventSubmit, k)
	_, ok = ParseEventKind("on_nothing")
	assert.False(t, ok)
}

func TestLayoutFlowAndPinned(t *testing.T) {
	v := NewView(0, nil)
	for i := 0; i < 6; i++ {
		v.Add(button(fmt.Sprint("b", i), -1, nil))
	}
	v.Add(selectItem("s"))
	v.Add(button("pinned", 4, nil))

	rows, err := v.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components, 5)
	assert.Len(t, rows[1].(discordgo.ActionsRow).Components, 1)
	assert.IsType(t, &discordgo.SelectMenu{}, rows[2].(discordgo.ActionsRow).Components[0])
	assert.Equal(t, "pinned", rows[3].(discordgo.ActionsRow).Components[0].(*discordgo.Button).CustomID)
}

func TestLayoutOverflow(t *testing.T) {
	v := NewView(0, nil)
	for i := 0; i < 6; i++ {
		v.Add(selectItem(fmt.Sprint("s", i)))
	}
	_, err := v.Rows()
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))

	v = NewView(0, nil)
	v.Add(selectItem("a"))
	v.Add(&Item{Key: "b", Component: &discordgo.Button{CustomID: "b"}, Row: 0})
	_, err = v.Rows()
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))
}

func TestViewDispatch(t *testing.T) {
	calls := 0
	var failed *Item
	events := (&Events{}).OnError(func(_ context.Context, _ Container, _ *Interaction, err error, it *Item) {
		failed = it
	})
	v := NewView(0, events)
	v.Add(button("ok", -1, func(context.Context, *Interaction) error { calls++; return nil }))
	v.Add(button("bad", -1, func(context.Context, *Interaction) error { return errors.New("nope") }))
	ctx := context.Background()

	require.NoError(t, v.Dispatch(ctx, &Interaction{CustomID: "ok"}))
	assert.Equal(t, 1, calls)

	require.NoError(t, v.Dispatch(ctx, &Interaction{CustomID: "bad"}))
	require.NotNil(t, failed)
	assert.Equal(t, "bad", failed.Key)

	assert.ErrorIs(t, v.Dispatch(ctx, &Interaction{CustomID: "missing"}), ErrUnknownItem)

	events.OnCheck(func(context.Context, Container, *Interaction) bool { return false })
	require.NoError(t, v.Dispatch(ctx, &Interaction{CustomID: "ok"}))
	assert.Equal(t, 1, calls, "check gate blocks the callback")
}

func TestRemoveIf(t *testing.T) {
	v := NewView(0, nil)
	v.Add(button("a", -1, nil))
	v.Add(&Item{Key: "nav", Component: &discordgo.Button{CustomID: "n"}, Row: -1, Nav: true})
	v.Add(button("b", -1, nil))
	v.RemoveIf(func(it *Item) bool { return it.Nav })
	require.Equal(t, 2, v.Len())
	assert.Equal(t, "b", v.Items()[1].Key)
}

func TestModalDispatch(t *testing.T) {
	var got string
	events := (&Events{}).OnSubmit(func(_ context.Context, m *Modal, in *Interaction) error {
		got, _ = m.Value(in, "name")
		return nil
	})
	m := NewModal("Form", "form-1", 0, events)
	m.Add(&Item{Key: "name", Component: &discordgo.TextInput{CustomID: "ti-1", Label: "Name"}, Row: -1})
	m.Add(&Item{Key: "bio", Component: &discordgo.TextInput{CustomID: "ti-2", Label: "Bio"}, Row: -1})

	require.NoError(t, m.Dispatch(context.Background(), &Interaction{CustomID: "form-1", Fields: map[string]string{"ti-1": "Ana"}}))
	assert.Equal(t, "Ana", got)

	data, err := m.ResponseData()
	require.NoError(t, err)
	assert.Equal(t, "form-1", data.CustomID)
	assert.Len(t, data.Components, 2, "one row per text input")
}

func TestMessagePayloads(t *testing.T) {
	yes := true
	content := "hi"
	m := &Message{Content: &content, Ephemeral: &yes, Silent: &yes, TTS: &yes}

	send, err := m.Send()
	require.NoError(t, err)
	assert.Equal(t, "hi", send.Content)
	assert.True(t, send.TTS)
	assert.Equal(t, discordgo.MessageFlagsSuppressNotifications, send.Flags, "ephemeral only applies to interaction responses")

	data, err := m.ResponseData()
	require.NoError(t, err)
	assert.Equal(t, discordgo.MessageFlagsEphemeral|discordgo.MessageFlagsSuppressNotifications, data.Flags)
	assert.NotNil(t, data.Embeds)
	assert.NotNil(t, data.Components)
}

package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	edits []*ui.Message
	fail  error
}

func (r *recorder) EditMessage(_ context.Context, m *ui.Message) error {
	if r.fail != nil {
		return r.fail
	}
	r.edits = append(r.edits, m)
	return nil
}

func (r *recorder) SendMessage(context.Context, *ui.Message) error { return nil }
func (r *recorder) SendModal(context.Context, *ui.Modal) error     { return nil }
func (r *recorder) Defer(context.Context) error                    { return nil }

func pages(n int) []*ui.Message {
	out := make([]*ui.Message, n)
	for i := range out {
		content := string(rune('a' + i))
		out[i] = &ui.Message{Content: &content}
	}
	return out
}

func navKeys(p *ui.Message) []string {
	var keys []string
	for _, it := range p.View.Items() {
		if it.Nav {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

func item(p *ui.Message, key string) *ui.Item {
	for _, it := range p.View.Items() {
		if it.Key == key {
			return it
		}
	}
	return nil
}

func TestLinkArrows(t *testing.T) {
	m, err := New(pages(4), 0, Arrows{}, nil)
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	assert.Equal(t, []string{"next"}, navKeys(m.Pages()[0]))
	assert.Equal(t, []string{"previous", "next"}, navKeys(m.Pages()[1]))
	assert.Equal(t, []string{"previous", "next"}, navKeys(m.Pages()[2]))
	assert.Equal(t, []string{"previous"}, navKeys(m.Pages()[3]))

	b := item(m.Pages()[0], "next").Component.(*discordgo.Button)
	assert.Equal(t, "➡️", b.Emoji.Name)
	assert.Empty(t, b.Label)
}

func TestSinglePageHasNoArrows(t *testing.T) {
	m, err := New(pages(1), 0, Arrows{}, nil)
	require.NoError(t, err)
	assert.Empty(t, navKeys(m.Pages()[0]))
}

func TestLinkIsIdempotent(t *testing.T) {
	ps := pages(3)
	own := &ui.Item{Key: "own", Component: &discordgo.Button{CustomID: "own", Label: "Own"}, Row: -1}
	ps[1].View = ui.NewView(0, nil)
	ps[1].View.Add(own)

	m, err := New(ps, 0, Arrows{}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Link())
	require.NoError(t, m.Link())

	assert.Len(t, m.Pages()[1].View.Items(), 3)
	assert.Same(t, own, m.Pages()[1].View.Items()[0])

	require.NoError(t, m.SetPages(m.Pages()[:2]))
	assert.Equal(t, []string{"previous"}, navKeys(m.Pages()[1]))
}

func TestNextAdvancesAndFiresChange(t *testing.T) {
	var seen []int
	events := (&ui.Events{}).OnChange(func(_ context.Context, p ui.Pager) {
		seen = append(seen, p.ActivePage())
	})
	m, err := New(pages(2), 0, Arrows{}, events)
	require.NoError(t, err)

	rec := &recorder{}
	next := item(m.Pages()[0], "next")
	require.NoError(t, m.Dispatch(context.Background(), &ui.Interaction{CustomID: next.CustomID(), Responder: rec}))

	assert.Equal(t, 1, m.ActivePage())
	assert.Equal(t, []int{1}, seen)
	require.Len(t, rec.edits, 1)
	assert.Same(t, m.Pages()[1], rec.edits[0])

	prev := item(m.Pages()[1], "previous")
	require.NoError(t, m.Dispatch(context.Background(), &ui.Interaction{CustomID: prev.CustomID(), Responder: rec}))
	assert.Equal(t, 0, m.ActivePage())
	assert.Equal(t, []int{1, 0}, seen)
}

func TestFailedEditKeepsPage(t *testing.T) {
	var reported error
	events := (&ui.Events{}).OnError(func(_ context.Context, _ ui.Container, _ *ui.Interaction, err error, _ *ui.Item) {
		reported = err
	})
	m, err := New(pages(2), 0, Arrows{}, events)
	require.NoError(t, err)

	rec := &recorder{fail: errors.New("gone")}
	next := item(m.Pages()[0], "next")
	require.NoError(t, m.Dispatch(context.Background(), &ui.Interaction{CustomID: next.CustomID(), Responder: rec}))
	assert.Equal(t, 0, m.ActivePage())
	assert.EqualError(t, reported, "gone")
}

func TestCustomArrows(t *testing.T) {
	m, err := New(pages(2), 0, Arrows{Next: model.Attrs{"label": "Forward", "custom_id": "fixed"}}, nil)
	require.NoError(t, err)
	b := item(m.Pages()[0], "next").Component.(*discordgo.Button)
	assert.Equal(t, "Forward", b.Label)
	assert.NotEqual(t, "fixed", b.CustomID)
	assert.Equal(t, "⬅️", item(m.Pages()[1], "previous").Component.(*discordgo.Button).Emoji.Name)
}

func TestSetFrontPage(t *testing.T) {
	m, err := New(pages(3), 0, Arrows{}, nil)
	require.NoError(t, err)

	require.NoError(t, m.SetFrontPage(2))
	assert.Equal(t, 2, m.FrontPage())
	assert.Equal(t, 0, m.ActivePage())
	assert.Same(t, m.Pages()[2], m.Front())

	err = m.SetFrontPage(3)
	assert.True(t, errors.Is(err, tmplerr.ErrIndexOutOfRange))
	assert.True(t, errors.Is(err, tmplerr.ErrNotFound))
	assert.Equal(t, 2, m.FrontPage())

	assert.Error(t, m.SetFrontPage(-1))
}

func TestNavigateOutOfRange(t *testing.T) {
	m, err := New(pages(2), 0, Arrows{}, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Navigate(context.Background(), nil, 5), tmplerr.ErrIndexOutOfRange))
}

func TestDispatchUnknown(t *testing.T) {
	m, err := New(pages(2), 0, Arrows{}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Dispatch(context.Background(), &ui.Interaction{CustomID: "nope"}), ui.ErrUnknownItem)
	assert.Len(t, m.Items(), 2)
}

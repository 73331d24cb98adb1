package discord

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/bot"
	"github.com/lojasmm/cartaz/internal/menu"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent      []*discordgo.MessageSend
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
	deleted   []string
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) InteractionResponseEdit(_ *discordgo.Interaction, e *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, e)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) InteractionResponseDelete(i *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, i.ID)
	return nil
}

func (f *fakeAPI) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, p *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups = append(f.followups, p)
	return &discordgo.Message{}, nil
}

func text(s string) *string { return &s }

func newHost(api *fakeAPI) (*Host, *bot.Router) {
	router := bot.NewRouter(nil)
	h := NewHost(api, router)
	h.after = func(_ time.Duration, fn func()) { fn() }
	h.Open = func(path string) (io.ReadCloser, error) {
		if path == "missing.txt" {
			return nil, errors.New("no such file")
		}
		return io.NopCloser(strings.NewReader("data")), nil
	}
	return h, router
}

func componentClick(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "c1",
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		Message:   &discordgo.Message{ID: "m1"},
	}}
}

func TestSendMessageWithFilesAndDelete(t *testing.T) {
	api := &fakeAPI{}
	h, _ := newHost(api)
	d := time.Second
	m := &ui.Message{
		Content:     text("hi"),
		Files:       []model.File{{Path: "dir/report.txt", Spoiler: true}},
		DeleteAfter: &d,
	}
	msg, err := h.Send(context.Background(), "c1", m)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	require.Len(t, api.sent, 1)
	require.Len(t, api.sent[0].Files, 1)
	assert.Equal(t, "SPOILER_report.txt", api.sent[0].Files[0].Name)
	assert.Equal(t, []string{"m1"}, api.deleted)

	_, err = h.Send(context.Background(), "c1", &ui.Message{Files: []model.File{{Path: "missing.txt"}}})
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))

	_, err = h.Send(context.Background(), "c1", ui.NewModal("t", "c", 0, nil))
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))
}

func TestMenuNavigationThroughGateway(t *testing.T) {
	api := &fakeAPI{}
	h, router := newHost(api)
	changed := 0
	events := (&ui.Events{}).OnChange(func(context.Context, ui.Pager) { changed++ })
	m, err := menu.New([]*ui.Message{{Content: text("one")}, {Content: text("two")}}, time.Minute, menu.Arrows{}, events)
	require.NoError(t, err)

	_, err = h.Send(context.Background(), "c1", m)
	require.NoError(t, err)
	assert.Equal(t, 1, router.Len())
	assert.Equal(t, "one", api.sent[0].Content)

	next := m.Pages()[0].View.Items()[0].CustomID()
	h.HandleInteraction(nil, componentClick(next))

	assert.Equal(t, 1, m.ActivePage())
	assert.Equal(t, 1, changed)
	require.Len(t, api.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, api.responses[0].Type)
	assert.Equal(t, "two", api.responses[0].Data.Content)
}

func TestUnownedInteractionIsIgnored(t *testing.T) {
	api := &fakeAPI{}
	h, _ := newHost(api)
	h.HandleInteraction(nil, componentClick("someone-else"))
	assert.Empty(t, api.responses)
}

func TestCallbackWithoutResponseIsDeferred(t *testing.T) {
	api := &fakeAPI{}
	h, _ := newHost(api)
	v := ui.NewView(0, nil)
	v.Add(&ui.Item{Key: "k", Component: &discordgo.Button{CustomID: "k", Label: "K"}, Row: -1,
		Callback: func(context.Context, *ui.Interaction) error { return nil }})
	_, err := h.Send(context.Background(), "c1", &ui.Message{Content: text("x"), View: v})
	require.NoError(t, err)

	h.HandleInteraction(nil, componentClick("k"))
	require.Len(t, api.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, api.responses[0].Type)
}

func TestResponderSequence(t *testing.T) {
	api := &fakeAPI{}
	h, router := newHost(api)
	r := &responder{host: h, interaction: &discordgo.Interaction{ID: "i1"}}
	ctx := context.Background()

	modal := ui.NewModal("Form", "form", 0, nil)
	modal.Add(&ui.Item{Key: "name", Component: &discordgo.TextInput{CustomID: "ti", Label: "Name"}, Row: -1})
	require.NoError(t, r.SendModal(ctx, modal))
	assert.Equal(t, discordgo.InteractionResponseModal, api.responses[0].Type)
	assert.True(t, router.Owns("form"))

	assert.ErrorIs(t, r.SendModal(ctx, modal), errAnswered)
	require.NoError(t, r.SendMessage(ctx, &ui.Message{Content: text("later")}))
	require.Len(t, api.followups, 1)
	assert.Equal(t, "later", api.followups[0].Content)

	require.NoError(t, r.EditMessage(ctx, &ui.Message{Content: text("edited")}))
	require.Len(t, api.edits, 1)
	assert.Equal(t, "edited", *api.edits[0].Content)
	require.NoError(t, r.Defer(ctx))
	assert.Len(t, api.responses, 1)
}

func TestTranslateModalSubmit(t *testing.T) {
	i := &discordgo.Interaction{
		ID:   "i2",
		Type: discordgo.InteractionModalSubmit,
		User: &discordgo.User{ID: "u2"},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: "form",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "ti", Value: "Ana"},
				}},
			},
		},
	}
	in := Translate(i)
	require.NotNil(t, in)
	assert.Equal(t, "form", in.CustomID)
	assert.Equal(t, "u2", in.UserID)
	assert.Equal(t, map[string]string{"ti": "Ana"}, in.Fields)

	assert.Nil(t, Translate(&discordgo.Interaction{Type: discordgo.InteractionPing}))
}

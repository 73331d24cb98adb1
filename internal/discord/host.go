// Package discord delivers render results through a discordgo session and
// turns gateway interactions into router dispatches.
package discord

import (
	"context"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/menu"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// API is the subset of *discordgo.Session the host calls.
type API interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Router is where interactions are dispatched and containers registered.
type Router interface {
	Attach(c ui.Container) (string, error)
	Dispatch(ctx context.Context, in *ui.Interaction) error
	Owns(customID string) bool
}

// Host sends messages and answers interactions.
type Host struct {
	api    API
	router Router
	// Open reads attachments named by file entries; it defaults to os.Open.
	Open func(path string) (io.ReadCloser, error)
	// after schedules delete_after; tests replace it.
	after func(d time.Duration, fn func())
}

func NewHost(api API, router Router) *Host {
	return &Host{
		api:    api,
		router: router,
		Open:   func(path string) (io.ReadCloser, error) { return os.Open(path) },
		after:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Send posts res to a channel. Modals need an interaction and fail here.
func (h *Host) Send(ctx context.Context, channelID string, res render.Result) (*discordgo.Message, error) {
	switch v := res.(type) {
	case *ui.Message:
		return h.sendMessage(ctx, channelID, v, viewOrNil(v.View))
	case *menu.Menu:
		return h.sendMessage(ctx, channelID, v.Front(), v)
	case *ui.Modal:
		return nil, tmplerr.New(tmplerr.Validation, "a modal can only answer an interaction")
	}
	return nil, tmplerr.New(tmplerr.UnrecognizedType, "cannot send %T", res)
}

func (h *Host) sendMessage(ctx context.Context, channelID string, m *ui.Message, owner ui.Container) (*discordgo.Message, error) {
	data, err := m.Send()
	if err != nil {
		return nil, err
	}
	files, closeAll, err := h.files(m.Files)
	if err != nil {
		return nil, err
	}
	defer closeAll()
	data.Files = files

	msg, err := h.api.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := h.attach(owner); err != nil {
		return msg, err
	}
	if m.DeleteAfter != nil {
		h.after(*m.DeleteAfter, func() {
			if err := h.api.ChannelMessageDelete(channelID, msg.ID); err != nil {
				log.Printf("discord: delete_after for message %s failed: %v", msg.ID, err)
			}
		})
	}
	return msg, nil
}

// Respond answers an interaction with res.
func (h *Host) Respond(ctx context.Context, i *discordgo.Interaction, res render.Result) error {
	r := &responder{host: h, interaction: i}
	switch v := res.(type) {
	case *ui.Message:
		return r.SendMessage(ctx, v)
	case *menu.Menu:
		if err := r.reply(ctx, v.Front()); err != nil {
			return err
		}
		return h.attach(v)
	case *ui.Modal:
		return r.SendModal(ctx, v)
	}
	return tmplerr.New(tmplerr.UnrecognizedType, "cannot respond with %T", res)
}

func (h *Host) attach(c ui.Container) error {
	if c == nil || len(c.Items()) == 0 {
		return nil
	}
	_, err := h.router.Attach(c)
	return err
}

// viewOrNil keeps a nil *ui.View from becoming a non-nil Container.
func viewOrNil(v *ui.View) ui.Container {
	if v == nil {
		return nil
	}
	return v
}

func (h *Host) files(list []model.File) ([]*discordgo.File, func(), error) {
	var (
		out     []*discordgo.File
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	for _, f := range list {
		rc, err := h.Open(f.Path)
		if err != nil {
			closeAll()
			return nil, func() {}, tmplerr.Wrap(tmplerr.Validation, err, "attachment %q", f.Path)
		}
		closers = append(closers, rc)
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		if f.Spoiler {
			name = "SPOILER_" + name
		}
		out = append(out, &discordgo.File{
			Name:        name,
			ContentType: mime.TypeByExtension(filepath.Ext(name)),
			Reader:      rc,
		})
	}
	return out, closeAll, nil
}

// HandleInteraction is a discordgo event handler: s.AddHandler(host.HandleInteraction).
// Interactions on ids the router does not own are left for other handlers.
func (h *Host) HandleInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	in := Translate(ic.Interaction)
	if in == nil || !h.router.Owns(in.CustomID) {
		return
	}
	r := &responder{host: h, interaction: ic.Interaction}
	in.Responder = r

	ctx := context.Background()
	if err := h.router.Dispatch(ctx, in); err != nil {
		log.Printf("discord: interaction %s (%s): %v", in.ID, in.CustomID, err)
	}
	if !r.responded {
		if err := r.Defer(ctx); err != nil {
			log.Printf("discord: acknowledging interaction %s: %v", in.ID, err)
		}
	}
}

// Translate converts component and modal-submit interactions. Other
// interaction types give nil.
func Translate(i *discordgo.Interaction) *ui.Interaction {
	in := &ui.Interaction{
		ID:        i.ID,
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		Raw:       i,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		in.UserID = i.Member.User.ID
	case i.User != nil:
		in.UserID = i.User.ID
	}
	if i.Message != nil {
		in.MessageID = i.Message.ID
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		in.CustomID = data.CustomID
		in.Values = data.Values
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.CustomID = data.CustomID
		in.Fields = make(map[string]string)
		for _, row := range data.Components {
			ar, ok := row.(*discordgo.ActionsRow)
			if !ok {
				continue
			}
			for _, c := range ar.Components {
				if ti, ok := c.(*discordgo.TextInput); ok {
					in.Fields[ti.CustomID] = ti.Value
				}
			}
		}
	default:
		return nil
	}
	return in
}

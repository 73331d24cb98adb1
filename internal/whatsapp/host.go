package whatsapp

import (
	"context"
	"log"

	"github.com/lojasmm/cartaz/internal/menu"
	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Sender is the part of Client the host needs.
type Sender interface {
	SendMessage(to string, m *ui.Message) error
}

// Router is where replies are dispatched and rendered views registered.
type Router interface {
	Attach(c ui.Container) (string, error)
	Dispatch(ctx context.Context, in *ui.Interaction) error
}

// Host delivers render results over WhatsApp and feeds reply ids back to
// the router. WhatsApp cannot edit sent messages, so an edit is a resend.
type Host struct {
	sender Sender
	router Router
}

func NewHost(s Sender, r Router) *Host {
	return &Host{sender: s, router: r}
}

// Deliver sends res to a phone number and attaches its views.
func (h *Host) Deliver(ctx context.Context, to string, res render.Result) error {
	switch v := res.(type) {
	case *ui.Message:
		return h.send(to, v, true)
	case *menu.Menu:
		if err := h.send(to, v.Front(), false); err != nil {
			return err
		}
		_, err := h.router.Attach(v)
		return err
	case *ui.Modal:
		return tmplerr.New(tmplerr.Validation, "whatsapp cannot show modals")
	}
	return tmplerr.New(tmplerr.UnrecognizedType, "cannot deliver %T", res)
}

func (h *Host) send(to string, m *ui.Message, attach bool) error {
	if err := h.sender.SendMessage(to, m); err != nil {
		return err
	}
	if attach && m.View != nil && m.View.Len() > 0 {
		if _, err := h.router.Attach(m.View); err != nil {
			return err
		}
	}
	return nil
}

// HandleReply routes a button or list reply. It has the ReplyHandler
// signature.
func (h *Host) HandleReply(phone, messageID, replyID string) {
	customID, values := ParseReplyID(replyID)
	in := &ui.Interaction{
		ID:        messageID,
		CustomID:  customID,
		UserID:    phone,
		ChannelID: phone,
		Values:    values,
		Responder: &responder{host: h, to: phone},
	}
	if err := h.router.Dispatch(context.Background(), in); err != nil {
		log.Printf("whatsapp: reply %q from %s: %v", replyID, phone, err)
	}
}

type responder struct {
	host *Host
	to   string
}

func (r *responder) EditMessage(_ context.Context, m *ui.Message) error {
	return r.host.send(r.to, m, false)
}

func (r *responder) SendMessage(_ context.Context, m *ui.Message) error {
	return r.host.send(r.to, m, true)
}

func (r *responder) SendModal(context.Context, *ui.Modal) error {
	return tmplerr.New(tmplerr.Validation, "whatsapp cannot show modals")
}

func (r *responder) Defer(context.Context) error { return nil }

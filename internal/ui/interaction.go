// Package ui holds the rendered objects a host delivers: messages, views of
// interactive items, modals, and the event tables that observe them. The
// component values themselves are discordgo types; hosts other than Discord
// translate them.
package ui

import "context"

// Interaction is one user action, translated by a host adapter.
type Interaction struct {
	ID        string
	CustomID  string
	UserID    string
	ChannelID string
	GuildID   string
	MessageID string

	// Values holds the selected values of a select.
	Values []string
	// Fields holds modal submit values keyed by text input custom id.
	Fields map[string]string

	Responder Responder

	// Raw is the host's own event, for callbacks that need more.
	Raw any
}

// Responder answers an interaction on the host that delivered it. An
// interaction is answered at most once.
type Responder interface {
	// EditMessage replaces the message the interaction came from.
	EditMessage(ctx context.Context, m *Message) error
	// SendMessage answers with a new message.
	SendMessage(ctx context.Context, m *Message) error
	// SendModal answers with a modal form.
	SendModal(ctx context.Context, m *Modal) error
	// Defer acknowledges without changing anything.
	Defer(ctx context.Context) error
}

// Callback handles an interaction on one item.
type Callback func(ctx context.Context, in *Interaction) error

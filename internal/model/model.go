// Package model holds the normalized template definitions both source
// readers produce. Nothing here knows about XML or JSON; everything past
// the readers is written against these types.
package model

import "fmt"

// Kind discriminates the element variants.
type Kind int

const (
	KindMessage Kind = iota + 1
	KindExpansive
	KindMenu
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindExpansive:
		return "expansive"
	case KindMenu:
		return "menu"
	case KindModal:
		return "modal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Element is one named template definition. Message is set for
// KindMessage and KindExpansive, Menu for KindMenu, Modal for KindModal.
type Element struct {
	Key     string
	Kind    Kind
	Message *Message
	Menu    *Menu
	Modal   *Modal
}

// Message describes one message. Nil pointers mean the field was absent
// from the template and must not be sent, which is different from sending
// an empty value.
type Message struct {
	Content        *string
	Embeds         []*Embed
	View           *View
	Files          []File
	Mentions       *Mentions
	Reference      *Reference
	TTS            *bool
	Ephemeral      *bool
	Silent         *bool
	SuppressEmbeds *bool
	DeleteAfter    *float64 // seconds
	Nonce          *string

	// PageKey names the page-number placeholder of an expansive message.
	PageKey string
}

// Embed is the rich-content card of a message.
type Embed struct {
	Title       *string
	Description string
	Colour      string
	Type        string
	URL         string
	Timestamp   string
	Image       string
	Thumbnail   string
	Author      *Author
	Footer      *Footer
	Fields      []Field

	// Expand is the single oversized field an expansive embed paginates.
	Expand *Field
}

type Author struct {
	Name string
	URL  string
	Icon string
}

type Footer struct {
	Text string
	Icon string
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// File is an attachment named by path. Opening it is the delivery
// layer's job.
type File struct {
	Path        string
	Name        string
	Description string
	Spoiler     bool
}

// Mentions is the allowed-mentions policy.
type Mentions struct {
	Everyone    *bool
	Users       *bool
	Roles       *bool
	RepliedUser *bool
	UserIDs     []string
	RoleIDs     []string
}

// Reference points the message at another message (a reply).
type Reference struct {
	MessageID string
	ChannelID string
	GuildID   string
}

// View is an ordered set of interactive components.
type View struct {
	Timeout    *float64 // seconds
	Components []Component
}

// Component is one interactive control as written in the template. Kind is
// the raw discriminator ("button", "select", ...); Key is the callback
// lookup key, unique within its view.
type Component struct {
	Kind    string
	Key     string
	Attrs   Attrs
	Options []Attrs
}

// Menu is an ordered page sequence with navigation arrows.
type Menu struct {
	Timeout  *float64
	Pages    []Page
	Previous *Component
	Next     *Component
}

// Page references a message or expansive message, either by top-level key
// or inline.
type Page struct {
	Key    string
	Inline *Element
}

// Modal is a form of text inputs.
type Modal struct {
	Title      string
	CustomID   string
	Timeout    *float64
	Components []Component
}

package ui

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
)

// Message is one rendered message. Nil pointer fields were absent from the
// template and are left out of the payload.
type Message struct {
	Content         *string
	Embeds          []*discordgo.MessageEmbed
	View            *View
	Files           []model.File
	AllowedMentions *discordgo.MessageAllowedMentions
	Reference       *discordgo.MessageReference
	TTS             *bool
	Ephemeral       *bool
	Silent          *bool
	SuppressEmbeds  *bool
	DeleteAfter     *time.Duration
	Nonce           *string
}

// Kind reports the element kind a render produced.
func (m *Message) Kind() model.Kind { return model.KindMessage }

func isSet(b *bool) bool { return b != nil && *b }

// Flags folds the boolean options into message flags.
func (m *Message) Flags() discordgo.MessageFlags {
	var f discordgo.MessageFlags
	if isSet(m.Ephemeral) {
		f |= discordgo.MessageFlagsEphemeral
	}
	if isSet(m.Silent) {
		f |= discordgo.MessageFlagsSuppressNotifications
	}
	if isSet(m.SuppressEmbeds) {
		f |= discordgo.MessageFlagsSuppressEmbeds
	}
	return f
}

// Components lays out the view, if any.
func (m *Message) Components() ([]discordgo.MessageComponent, error) {
	if m.View == nil {
		return nil, nil
	}
	return m.View.Rows()
}

// Send builds a channel message payload. Files are attached by the caller.
func (m *Message) Send() (*discordgo.MessageSend, error) {
	rows, err := m.Components()
	if err != nil {
		return nil, err
	}
	send := &discordgo.MessageSend{
		Embeds:          m.Embeds,
		Components:      rows,
		AllowedMentions: m.AllowedMentions,
		Reference:       m.Reference,
		TTS:             isSet(m.TTS),
		Flags:           m.Flags() &^ discordgo.MessageFlagsEphemeral,
	}
	if m.Content != nil {
		send.Content = *m.Content
	}
	return send, nil
}

// ResponseData builds an interaction response payload.
func (m *Message) ResponseData() (*discordgo.InteractionResponseData, error) {
	rows, err := m.Components()
	if err != nil {
		return nil, err
	}
	data := &discordgo.InteractionResponseData{
		Embeds:          m.Embeds,
		Components:      rows,
		AllowedMentions: m.AllowedMentions,
		TTS:             isSet(m.TTS),
		Flags:           m.Flags(),
	}
	if m.Content != nil {
		data.Content = *m.Content
	}
	// An update must clear what the previous page showed.
	if data.Embeds == nil {
		data.Embeds = []*discordgo.MessageEmbed{}
	}
	if data.Components == nil {
		data.Components = []discordgo.MessageComponent{}
	}
	return data, nil
}

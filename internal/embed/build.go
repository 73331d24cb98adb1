// Package embed turns normalized embed definitions into host embeds and
// paginates oversized fields across several embeds.
package embed

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Builder converts embeds. TimestampFormat is a strptime format; empty
// means resolve.DefaultTimestampFormat.
type Builder struct {
	TimestampFormat string
}

// Build resolves colour and timestamp and copies everything else.
func (b Builder) Build(e *model.Embed) (*discordgo.MessageEmbed, error) {
	if e.Title == nil {
		return nil, tmplerr.New(tmplerr.Validation, "embed has no title")
	}
	out := &discordgo.MessageEmbed{
		Title:       *e.Title,
		Description: e.Description,
		URL:         e.URL,
		Type:        discordgo.EmbedType(e.Type),
	}

	if e.Colour != "" {
		c, err := resolve.Colour(e.Colour)
		if err != nil {
			return nil, err
		}
		out.Color = c
	}

	ts, err := resolve.Timestamp(e.Timestamp, b.TimestampFormat)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		out.Timestamp = ts.Format(time.RFC3339)
	}

	if e.Author != nil {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.Icon}
	}
	if e.Footer != nil {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text, IconURL: e.Footer.Icon}
	}
	if e.Image != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.Image}
	}
	if e.Thumbnail != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}

	fields := e.Fields
	if e.Expand != nil {
		fields = append(append([]model.Field(nil), fields...), *e.Expand)
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out, nil
}

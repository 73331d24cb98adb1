package resolve

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

var buttonStyles = map[string]discordgo.ButtonStyle{
	"primary":   discordgo.PrimaryButton,
	"blurple":   discordgo.PrimaryButton,
	"secondary": discordgo.SecondaryButton,
	"grey":      discordgo.SecondaryButton,
	"gray":      discordgo.SecondaryButton,
	"success":   discordgo.SuccessButton,
	"green":     discordgo.SuccessButton,
	"danger":    discordgo.DangerButton,
	"red":       discordgo.DangerButton,
	"link":      discordgo.LinkButton,
	"url":       discordgo.LinkButton,
}

var textInputStyles = map[string]discordgo.TextInputStyle{
	"short":     discordgo.TextInputShort,
	"long":      discordgo.TextInputParagraph,
	"paragraph": discordgo.TextInputParagraph,
}

// ButtonStyle resolves a button style name. An empty name is secondary.
func ButtonStyle(name string) (discordgo.ButtonStyle, error) {
	key := normalize(name)
	if key == "" {
		return discordgo.SecondaryButton, nil
	}
	if s, ok := buttonStyles[key]; ok {
		return s, nil
	}
	return 0, tmplerr.New(tmplerr.InvalidStyle, "unknown button style %q", name)
}

// TextInputStyle resolves a text input style name. An empty name is short.
func TextInputStyle(name string) (discordgo.TextInputStyle, error) {
	key := normalize(name)
	if key == "" {
		return discordgo.TextInputShort, nil
	}
	if s, ok := textInputStyles[key]; ok {
		return s, nil
	}
	return 0, tmplerr.New(tmplerr.InvalidStyle, "unknown text input style %q", name)
}

// normalize lower-cases a token and drops enum-style prefixes such as
// "ButtonStyle." so "ButtonStyle.green" and "green" agree.
func normalize(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	return key
}

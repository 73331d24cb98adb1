// Package component builds interactive items from normalized attribute
// bags and assembles them into views and modals.
package component

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Kind is a component discriminator.
type Kind string

const (
	KindButton            Kind = "button"
	KindSelect            Kind = "select"
	KindChannelSelect     Kind = "channel_select"
	KindRoleSelect        Kind = "role_select"
	KindUserSelect        Kind = "user_select"
	KindMentionableSelect Kind = "mentionable_select"
	KindTextInput         Kind = "text_input"
)

type buildFunc func(key string, attrs model.Attrs, options []model.Attrs) (discordgo.MessageComponent, error)

var builders = map[Kind]buildFunc{
	KindButton:    buildButton,
	KindSelect:    buildStringSelect,
	KindTextInput: buildTextInput,
	KindChannelSelect: func(key string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
		return buildTypedSelect(discordgo.ChannelSelectMenu, attrs)
	},
	KindRoleSelect: func(key string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
		return buildTypedSelect(discordgo.RoleSelectMenu, attrs)
	},
	KindUserSelect: func(key string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
		return buildTypedSelect(discordgo.UserSelectMenu, attrs)
	},
	KindMentionableSelect: func(key string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
		return buildTypedSelect(discordgo.MentionableSelectMenu, attrs)
	},
}

// aliases maps alternate spellings onto the canonical kinds.
var aliases = map[string]Kind{
	"string_select": KindSelect,
	"select_menu":   KindSelect,
	"dropdown":      KindSelect,
	"textinput":     KindTextInput,
	"input":         KindTextInput,
}

// ParseKind resolves a discriminator; an unknown one is an
// UnknownComponentKind error.
func ParseKind(s string) (Kind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if _, ok := builders[Kind(k)]; ok {
		return Kind(k), nil
	}
	if a, ok := aliases[k]; ok {
		return a, nil
	}
	return "", tmplerr.New(tmplerr.UnknownComponentKind, "unknown component kind %q", s)
}

// Build constructs one item. It does no I/O.
func Build(kind, key string, attrs model.Attrs, options []model.Attrs, cb ui.Callback) (*ui.Item, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = model.Attrs{}
	}
	comp, err := builders[k](key, attrs, options)
	if err != nil {
		return nil, err
	}
	row := -1
	if attrs.Has("row") {
		if row, err = resolve.Int(attrs["row"]); err != nil {
			return nil, tmplerr.Wrap(tmplerr.Validation, err, "component %q row", key)
		}
		if row < 0 || row >= ui.MaxRows {
			return nil, tmplerr.New(tmplerr.Validation, "component %q row %d is out of range", key, row)
		}
	}
	return &ui.Item{Key: key, Component: comp, Row: row, Callback: cb}, nil
}

// FromModel builds a template component.
func FromModel(c model.Component, cb ui.Callback) (*ui.Item, error) {
	return Build(c.Kind, c.Key, c.Attrs, c.Options, cb)
}

// NewCustomID returns a random 32-character hex id.
func NewCustomID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("component: reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func customID(attrs model.Attrs) string {
	if id, ok := attrs.String("custom_id"); ok && id != "" {
		return id
	}
	return NewCustomID()
}

func boolAttr(attrs model.Attrs, name string, fallback bool) (bool, error) {
	if !attrs.Has(name) {
		return fallback, nil
	}
	b, err := resolve.Bool(attrs[name])
	if err != nil {
		return false, tmplerr.Wrap(tmplerr.Validation, err, "attribute %s", name)
	}
	return b, nil
}

func intAttr(attrs model.Attrs, name string) (int, bool, error) {
	if !attrs.Has(name) {
		return 0, false, nil
	}
	n, err := resolve.Int(attrs[name])
	if err != nil {
		return 0, false, tmplerr.Wrap(tmplerr.Validation, err, "attribute %s", name)
	}
	return n, true, nil
}

func emojiAttr(v any) (*discordgo.ComponentEmoji, error) {
	if a, ok := v.(model.Attrs); ok {
		v = map[string]any(a)
	}
	return resolve.Emoji(v)
}

func buildButton(_ string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
	b := &discordgo.Button{
		Label: attrs.StringOr("label", ""),
		URL:   attrs.StringOr("url", ""),
	}
	var err error
	if b.Style, err = resolve.ButtonStyle(attrs.StringOr("style", "")); err != nil {
		return nil, err
	}
	if b.URL != "" {
		b.Style = discordgo.LinkButton
	}
	if b.Style != discordgo.LinkButton {
		b.CustomID = customID(attrs)
	}
	if b.Emoji, err = emojiAttr(attrs["emoji"]); err != nil {
		return nil, err
	}
	if b.Disabled, err = boolAttr(attrs, "disabled", false); err != nil {
		return nil, err
	}
	return b, nil
}

// selectBase fills what every select kind shares.
func selectBase(menuType discordgo.SelectMenuType, attrs model.Attrs) (*discordgo.SelectMenu, error) {
	s := &discordgo.SelectMenu{
		MenuType:    menuType,
		CustomID:    customID(attrs),
		Placeholder: attrs.StringOr("placeholder", ""),
	}
	var err error
	if s.Disabled, err = boolAttr(attrs, "disabled", false); err != nil {
		return nil, err
	}
	minValues, ok, err := intAttr(attrs, "min_values")
	if err != nil {
		return nil, err
	}
	if ok {
		s.MinValues = &minValues
	}
	if s.MaxValues, _, err = intAttr(attrs, "max_values"); err != nil {
		return nil, err
	}
	return s, nil
}

func buildStringSelect(_ string, attrs model.Attrs, options []model.Attrs) (discordgo.MessageComponent, error) {
	s, err := selectBase(discordgo.StringSelectMenu, attrs)
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		opt := discordgo.SelectMenuOption{
			Label:       o.StringOr("label", ""),
			Description: o.StringOr("description", ""),
		}
		opt.Value = o.StringOr("value", opt.Label)
		if opt.Emoji, err = emojiAttr(o["emoji"]); err != nil {
			return nil, err
		}
		if opt.Default, err = boolAttr(o, "default", false); err != nil {
			return nil, err
		}
		s.Options = append(s.Options, opt)
	}
	return s, nil
}

func buildTypedSelect(menuType discordgo.SelectMenuType, attrs model.Attrs) (discordgo.MessageComponent, error) {
	s, err := selectBase(menuType, attrs)
	if err != nil {
		return nil, err
	}
	if menuType == discordgo.ChannelSelectMenu {
		if s.ChannelTypes, err = resolve.ChannelTypes(attrs["channel_types"]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func buildTextInput(key string, attrs model.Attrs, _ []model.Attrs) (discordgo.MessageComponent, error) {
	ti := &discordgo.TextInput{
		CustomID:    customID(attrs),
		Label:       attrs.StringOr("label", key),
		Placeholder: attrs.StringOr("placeholder", ""),
		Value:       attrs.StringOr("default", attrs.StringOr("value", "")),
	}
	var err error
	if ti.Style, err = resolve.TextInputStyle(attrs.StringOr("style", "")); err != nil {
		return nil, err
	}
	if ti.Required, err = boolAttr(attrs, "required", true); err != nil {
		return nil, err
	}
	if ti.MinLength, _, err = intAttr(attrs, "min_length"); err != nil {
		return nil, err
	}
	if ti.MaxLength, _, err = intAttr(attrs, "max_length"); err != nil {
		return nil, err
	}
	return ti, nil
}

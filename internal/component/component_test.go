package component

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildButton(t *testing.T) {
	it, err := Build("button", "ok", model.Attrs{
		"style": "success", "label": "OK", "emoji": "👍", "disabled": "true", "row": "2",
	}, nil, nil)
	require.NoError(t, err)
	b := it.Component.(*discordgo.Button)
	assert.Equal(t, discordgo.SuccessButton, b.Style)
	assert.Equal(t, "OK", b.Label)
	assert.Equal(t, "👍", b.Emoji.Name)
	assert.True(t, b.Disabled)
	assert.Len(t, b.CustomID, 32)
	assert.Equal(t, 2, it.Row)
	assert.Equal(t, "ok", it.Key)
}

func TestBuildLinkButtonHasNoCustomID(t *testing.T) {
	it, err := Build("button", "docs", model.Attrs{"label": "Docs", "url": "https://example.com"}, nil, nil)
	require.NoError(t, err)
	b := it.Component.(*discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, b.Style)
	assert.Empty(t, b.CustomID)
	assert.Equal(t, -1, it.Row)
}

func TestBuildKeepsCustomID(t *testing.T) {
	it, err := Build("button", "k", model.Attrs{"label": "x", "custom_id": "fixed"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", it.CustomID())
}

func TestBuildSelect(t *testing.T) {
	it, err := Build("select", "pick", model.Attrs{"placeholder": "Pick", "min_values": 1.0, "max_values": "2"},
		[]model.Attrs{
			{"label": "A", "value": "a", "default": true},
			{"label": "B", "emoji": map[string]any{"name": "b", "id": "42"}},
		}, nil)
	require.NoError(t, err)
	s := it.Component.(*discordgo.SelectMenu)
	assert.Equal(t, discordgo.StringSelectMenu, s.MenuType)
	assert.Equal(t, "Pick", s.Placeholder)
	require.NotNil(t, s.MinValues)
	assert.Equal(t, 1, *s.MinValues)
	assert.Equal(t, 2, s.MaxValues)
	require.Len(t, s.Options, 2)
	assert.True(t, s.Options[0].Default)
	assert.Equal(t, "B", s.Options[1].Value, "value defaults to label")
	assert.Equal(t, "42", s.Options[1].Emoji.ID)
}

func TestBuildTypedSelects(t *testing.T) {
	for kind, want := range map[string]discordgo.SelectMenuType{
		"channel_select":     discordgo.ChannelSelectMenu,
		"role_select":        discordgo.RoleSelectMenu,
		"user_select":        discordgo.UserSelectMenu,
		"mentionable_select": discordgo.MentionableSelectMenu,
	} {
		it, err := Build(kind, "k", model.Attrs{"channel_types": "text, voice"}, nil, nil)
		require.NoError(t, err, kind)
		s := it.Component.(*discordgo.SelectMenu)
		assert.Equal(t, want, s.MenuType, kind)
		if want == discordgo.ChannelSelectMenu {
			assert.Equal(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice}, s.ChannelTypes)
		} else {
			assert.Empty(t, s.ChannelTypes)
		}
	}
}

func TestBuildTextInput(t *testing.T) {
	it, err := Build("text_input", "bio", model.Attrs{"style": "long", "max_length": "200", "required": "false", "default": "hi"}, nil, nil)
	require.NoError(t, err)
	ti := it.Component.(*discordgo.TextInput)
	assert.Equal(t, discordgo.TextInputParagraph, ti.Style)
	assert.Equal(t, "bio", ti.Label, "label defaults to the key")
	assert.Equal(t, 200, ti.MaxLength)
	assert.False(t, ti.Required)
	assert.Equal(t, "hi", ti.Value)
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name  string
		kind  string
		attrs model.Attrs
		opts  []model.Attrs
		want  error
	}{
		{"unknown kind", "slider", nil, nil, tmplerr.ErrUnknownComponentKind},
		{"bad style", "button", model.Attrs{"label": "x", "style": "sparkly"}, nil, tmplerr.ErrInvalidStyle},
		{"bad text style", "text_input", model.Attrs{"style": "huge"}, nil, tmplerr.ErrInvalidStyle},
		{"emoji without name", "button", model.Attrs{"emoji": map[string]any{"id": "1"}}, nil, tmplerr.ErrInvalidEmoji},
		{"option emoji without name", "select", nil, []model.Attrs{{"label": "a", "emoji": map[string]any{"id": "1"}}}, tmplerr.ErrInvalidEmoji},
		{"bad bool", "button", model.Attrs{"label": "x", "disabled": "maybe"}, nil, tmplerr.ErrValidation},
		{"bad row", "button", model.Attrs{"label": "x", "row": "9"}, nil, tmplerr.ErrValidation},
		{"fractional int", "text_input", model.Attrs{"min_length": 1.5}, nil, tmplerr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.kind, "k", tc.attrs, tc.opts, nil)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestParseKindAliases(t *testing.T) {
	k, err := ParseKind("Dropdown")
	require.NoError(t, err)
	assert.Equal(t, KindSelect, k)
}

func TestAssembleView(t *testing.T) {
	called := ""
	callables := Callables{
		"ok":     func(context.Context, *ui.Interaction) error { called = "ok"; return nil },
		"absent": func(context.Context, *ui.Interaction) error { return nil },
	}
	v := &model.View{Components: []model.Component{
		{Kind: "button", Key: "ok", Attrs: model.Attrs{"label": "OK"}},
		{Kind: "button", Key: "plain", Attrs: model.Attrs{"label": "Plain"}},
	}}
	view, err := Assembler{}.View(v, callables, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, view.Timeout())
	require.Len(t, view.Items(), 2)
	assert.Equal(t, "ok", view.Items()[0].Key)
	assert.NotNil(t, view.Items()[0].Callback)
	assert.Nil(t, view.Items()[1].Callback)

	require.NoError(t, view.Dispatch(context.Background(), &ui.Interaction{CustomID: view.Items()[0].CustomID()}))
	assert.Equal(t, "ok", called)
}

func TestAssembleViewTimeoutAndDuplicates(t *testing.T) {
	secs := 2.5
	view, err := Assembler{Timeout: time.Minute}.View(&model.View{Timeout: &secs}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, view.Timeout())

	view, err = Assembler{Timeout: time.Minute}.View(&model.View{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, view.Timeout())

	_, err = Assembler{}.View(&model.View{Components: []model.Component{
		{Kind: "button", Key: "a", Attrs: model.Attrs{"label": "1"}},
		{Kind: "button", Key: "a", Attrs: model.Attrs{"label": "2"}},
	}}, nil, nil)
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))
}

func TestAssembleModal(t *testing.T) {
	m, err := Assembler{}.Modal(&model.Modal{Title: "T", Components: []model.Component{
		{Kind: "text_input", Key: "name", Attrs: model.Attrs{"label": "Name"}},
	}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "T", m.Title)
	assert.Len(t, m.CustomID, 32)
	assert.Len(t, m.Items(), 1)
}

package render

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/embed"
	"github.com/lojasmm/cartaz/internal/menu"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// pipeline carries the state of one Render call.
type pipeline struct {
	r         *Renderer
	doc       source.Document
	keywords  map[string]any
	callables component.Callables
	events    *ui.Events
	assembler component.Assembler
	embeds    embed.Builder
	// visiting holds the keys being resolved, to catch menus that page
	// back into themselves.
	visiting map[string]bool
}

// element locates key and decodes it, templating the fragment first when
// rendering per key.
func (p *pipeline) element(key string) (*model.Element, error) {
	frag, err := p.doc.Lookup(key)
	if err != nil {
		return nil, err
	}
	if p.r.opts.Order == PerKey {
		frag, err = frag.Template(p.r.opts.Engine, p.keywords)
		if err != nil {
			return nil, tmplerr.Wrap(tmplerr.Validation, err, "templating %q", key)
		}
	}
	el, err := frag.Decode()
	if err != nil {
		return nil, err
	}
	if el.Key == "" {
		el.Key = key
	}
	return el, nil
}

func (p *pipeline) build(el *model.Element) (Result, error) {
	switch el.Kind {
	case model.KindMessage:
		return p.message(el.Message)
	case model.KindExpansive:
		pages, err := p.expansive(el.Message)
		if err != nil {
			return nil, err
		}
		return menu.New(pages, p.timeout(nil), menu.Arrows{}, p.events)
	case model.KindMenu:
		return p.menu(el)
	case model.KindModal:
		return p.modal(el.Modal)
	}
	return nil, tmplerr.New(tmplerr.UnrecognizedType, "element %q has kind %s", el.Key, el.Kind)
}

func (p *pipeline) timeout(seconds *float64) time.Duration {
	if seconds != nil {
		return time.Duration(*seconds * float64(time.Second))
	}
	if p.r.opts.ViewTimeout > 0 {
		return p.r.opts.ViewTimeout
	}
	return component.DefaultTimeout
}

// message builds one message. Embeds are built as given; the expansive
// path hands in already paginated ones.
func (p *pipeline) message(m *model.Message) (*ui.Message, error) {
	if m == nil {
		return nil, tmplerr.New(tmplerr.Validation, "message has no body")
	}
	out := &ui.Message{
		Content:        m.Content,
		Files:          m.Files,
		TTS:            m.TTS,
		Ephemeral:      m.Ephemeral,
		Silent:         m.Silent,
		SuppressEmbeds: m.SuppressEmbeds,
		Nonce:          m.Nonce,
	}
	for _, e := range m.Embeds {
		built, err := p.embeds.Build(e)
		if err != nil {
			return nil, err
		}
		out.Embeds = append(out.Embeds, built)
	}
	if m.View != nil {
		v, err := p.assembler.View(m.View, p.callables, p.events)
		if err != nil {
			return nil, err
		}
		out.View = v
	}
	if m.Mentions != nil {
		out.AllowedMentions = allowedMentions(m.Mentions)
	}
	if m.Reference != nil {
		ref, err := reference(m.Reference)
		if err != nil {
			return nil, err
		}
		out.Reference = ref
	}
	if m.DeleteAfter != nil {
		d := time.Duration(*m.DeleteAfter * float64(time.Second))
		out.DeleteAfter = &d
	}
	return out, nil
}

// expansive paginates the message's expandable embed and builds one message
// per page. Other embeds repeat on every page.
func (p *pipeline) expansive(m *model.Message) ([]*ui.Message, error) {
	if m == nil || len(m.Embeds) == 0 {
		return nil, tmplerr.New(tmplerr.Validation, "expansive message has no embed")
	}
	at := 0
	for i, e := range m.Embeds {
		if e.Expand != nil {
			at = i
			break
		}
	}
	split, err := embed.Paginate(m.Embeds[at], m.PageKey)
	if err != nil {
		return nil, err
	}

	pages := make([]*ui.Message, 0, len(split))
	for _, e := range split {
		page := *m
		page.Embeds = append([]*model.Embed(nil), m.Embeds...)
		page.Embeds[at] = e
		msg, err := p.message(&page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, msg)
	}
	return pages, nil
}

func (p *pipeline) menu(el *model.Element) (*menu.Menu, error) {
	if el.Key != "" {
		p.visiting[el.Key] = true
		defer delete(p.visiting, el.Key)
	}
	pages, err := p.pages(el.Menu)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, tmplerr.New(tmplerr.Validation, "menu %q has no pages", el.Key)
	}
	var arrows menu.Arrows
	if el.Menu.Previous != nil {
		arrows.Previous = el.Menu.Previous.Attrs
	}
	if el.Menu.Next != nil {
		arrows.Next = el.Menu.Next.Attrs
	}
	return menu.New(pages, p.timeout(el.Menu.Timeout), arrows, p.events)
}

// pages resolves every page reference in order and flattens the result:
// expansive pages contribute one message per split and referenced menus
// contribute all of their pages.
func (p *pipeline) pages(m *model.Menu) ([]*ui.Message, error) {
	var out []*ui.Message
	for i, page := range m.Pages {
		el := page.Inline
		if el == nil {
			if page.Key == "" {
				return nil, tmplerr.New(tmplerr.Validation, "menu page %d has neither a key nor a body", i)
			}
			if p.visiting[page.Key] {
				return nil, tmplerr.New(tmplerr.Validation, "menu page %q refers back to itself", page.Key)
			}
			var err error
			if el, err = p.element(page.Key); err != nil {
				return nil, err
			}
		}
		msgs, err := p.page(el)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}
	return out, nil
}

func (p *pipeline) page(el *model.Element) ([]*ui.Message, error) {
	switch el.Kind {
	case model.KindMessage:
		msg, err := p.message(el.Message)
		if err != nil {
			return nil, err
		}
		return []*ui.Message{msg}, nil
	case model.KindExpansive:
		return p.expansive(el.Message)
	case model.KindMenu:
		if el.Key != "" {
			p.visiting[el.Key] = true
			defer delete(p.visiting, el.Key)
		}
		return p.pages(el.Menu)
	case model.KindModal:
		return nil, tmplerr.New(tmplerr.Validation, "modal %q cannot be a menu page", el.Key)
	}
	return nil, tmplerr.New(tmplerr.UnrecognizedType, "menu page %q has kind %s", el.Key, el.Kind)
}

func (p *pipeline) modal(m *model.Modal) (*ui.Modal, error) {
	if m == nil {
		return nil, tmplerr.New(tmplerr.Validation, "modal has no body")
	}
	return p.assembler.Modal(m, p.callables, p.events)
}

// allowedMentions turns the policy into the host payload. An explicit id
// list wins over the blanket flag for the same category.
func allowedMentions(m *model.Mentions) *discordgo.MessageAllowedMentions {
	out := &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{},
		Users: m.UserIDs,
		Roles: m.RoleIDs,
	}
	if m.Everyone != nil && *m.Everyone {
		out.Parse = append(out.Parse, discordgo.AllowedMentionTypeEveryone)
	}
	if m.Users != nil && *m.Users && len(m.UserIDs) == 0 {
		out.Parse = append(out.Parse, discordgo.AllowedMentionTypeUsers)
	}
	if m.Roles != nil && *m.Roles && len(m.RoleIDs) == 0 {
		out.Parse = append(out.Parse, discordgo.AllowedMentionTypeRoles)
	}
	if m.RepliedUser != nil {
		out.RepliedUser = *m.RepliedUser
	}
	return out
}

func reference(r *model.Reference) (*discordgo.MessageReference, error) {
	if r.MessageID == "" {
		return nil, tmplerr.New(tmplerr.Validation, "message reference needs message_id")
	}
	if r.ChannelID == "" {
		return nil, tmplerr.New(tmplerr.Validation, "message reference needs channel_id")
	}
	return &discordgo.MessageReference{MessageID: r.MessageID, ChannelID: r.ChannelID, GuildID: r.GuildID}, nil
}

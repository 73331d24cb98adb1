package jsonsrc

import (
	"strings"

	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Decode interprets the fragment by its "type" member.
func (f *Fragment) Decode() (*model.Element, error) {
	el, err := decodeElement(f.value)
	if err != nil {
		return nil, err
	}
	el.Key = f.key
	return el, nil
}

func decodeElement(v any) (*model.Element, error) {
	obj, ok := v.(Object)
	if !ok {
		return nil, tmplerr.New(tmplerr.UnrecognizedType, "element must be an object, got %T", v)
	}
	typ, _ := str(obj, "type")
	switch strings.ToLower(typ) {
	case "message", "embed":
		msg, err := decodeMessage(obj)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindMessage, Message: msg}, nil
	case "expansive", "expansive_message", "expansive_embed":
		msg, err := decodeMessage(obj)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindExpansive, Message: msg}, nil
	case "menu":
		menu, err := decodeMenu(obj)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindMenu, Menu: menu}, nil
	case "modal":
		modal, err := decodeModal(obj)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindModal, Modal: modal}, nil
	case "":
		return nil, tmplerr.New(tmplerr.UnrecognizedType, "element has no \"type\"")
	default:
		return nil, tmplerr.New(tmplerr.UnrecognizedType, "unrecognized element type %q", typ)
	}
}

// str reads a scalar member as text, trying names in order.
func str(obj Object, names ...string) (string, bool) {
	for _, name := range names {
		v, ok := obj.Get(name)
		if !ok || v == nil {
			continue
		}
		if s, ok := (model.Attrs{name: v}).String(name); ok {
			return s, true
		}
	}
	return "", false
}

func object(obj Object, names ...string) (Object, bool) {
	for _, name := range names {
		if v, ok := obj.Get(name); ok {
			if o, ok := v.(Object); ok {
				return o, true
			}
		}
	}
	return nil, false
}

// list reads a member that may be a single value or an array of values.
func list(obj Object, names ...string) []any {
	var out []any
	for _, name := range names {
		v, ok := obj.Get(name)
		if !ok || v == nil {
			continue
		}
		if l, ok := v.([]any); ok {
			out = append(out, l...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func boolPtr(obj Object, name string) (*bool, error) {
	v, ok := obj.Get(name)
	return source.BoolPtr(name, v, ok)
}

func floatPtr(obj Object, name string) (*float64, error) {
	v, ok := obj.Get(name)
	return source.FloatPtr(name, v, ok)
}

func decodeMessage(obj Object) (*model.Message, error) {
	msg := &model.Message{}
	var err error

	msg.Content = source.StringPtr(str(obj, "content"))
	msg.Nonce = source.StringPtr(str(obj, "nonce"))
	msg.PageKey, _ = str(obj, "page_key", "page_number_key")

	for _, e := range list(obj, "embed", "embeds") {
		eo, ok := e.(Object)
		if !ok {
			return nil, tmplerr.New(tmplerr.Validation, "embed must be an object")
		}
		embed, err := decodeEmbed(eo)
		if err != nil {
			return nil, err
		}
		msg.Embeds = append(msg.Embeds, embed)
	}

	if view, ok := obj.Get("view"); ok && view != nil {
		if msg.View, err = decodeView(view); err != nil {
			return nil, err
		}
	} else if comps, ok := obj.Get("components"); ok && comps != nil {
		v := &model.View{}
		if v.Components, err = decodeComponents(comps); err != nil {
			return nil, err
		}
		msg.View = v
	}

	if msg.Files, err = decodeFiles(list(obj, "file", "files")); err != nil {
		return nil, err
	}
	if m, ok := object(obj, "mentions", "allowed_mentions"); ok {
		if msg.Mentions, err = decodeMentions(m); err != nil {
			return nil, err
		}
	}
	if r, ok := object(obj, "reference", "message_reference"); ok {
		msg.Reference = decodeReference(r)
	}

	if msg.TTS, err = boolPtr(obj, "tts"); err != nil {
		return nil, err
	}
	if msg.Ephemeral, err = boolPtr(obj, "ephemeral"); err != nil {
		return nil, err
	}
	if msg.Silent, err = boolPtr(obj, "silent"); err != nil {
		return nil, err
	}
	if msg.SuppressEmbeds, err = boolPtr(obj, "suppress_embeds"); err != nil {
		return nil, err
	}
	if msg.DeleteAfter, err = floatPtr(obj, "delete_after"); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeEmbed(obj Object) (*model.Embed, error) {
	e := &model.Embed{}
	e.Title = source.StringPtr(str(obj, "title"))
	e.Description, _ = str(obj, "description")
	e.Colour, _ = str(obj, "colour", "color")
	e.Type, _ = str(obj, "type")
	e.URL, _ = str(obj, "url")
	e.Timestamp, _ = str(obj, "timestamp")
	e.Image = urlOf(obj, "image")
	e.Thumbnail = urlOf(obj, "thumbnail")

	if a, ok := object(obj, "author"); ok {
		e.Author = &model.Author{}
		e.Author.Name, _ = str(a, "name")
		e.Author.URL, _ = str(a, "url")
		e.Author.Icon, _ = str(a, "icon", "icon_url")
	}
	if f, ok := object(obj, "footer"); ok {
		e.Footer = &model.Footer{}
		e.Footer.Text, _ = str(f, "text")
		e.Footer.Icon, _ = str(f, "icon", "icon_url")
	} else if text, ok := str(obj, "footer"); ok {
		e.Footer = &model.Footer{Text: text}
	}

	for _, fv := range list(obj, "fields") {
		fo, ok := fv.(Object)
		if !ok {
			return nil, tmplerr.New(tmplerr.Validation, "embed field must be an object")
		}
		field, err := decodeField(fo)
		if err != nil {
			return nil, err
		}
		expand := false
		if v, ok := fo.Get("expand"); ok {
			if expand, err = resolve.Bool(v); err != nil {
				return nil, tmplerr.Wrap(tmplerr.Validation, err, "field expand")
			}
		}
		if expand {
			e.Expand = &field
			continue
		}
		e.Fields = append(e.Fields, field)
	}
	if fo, ok := object(obj, "field"); ok {
		field, err := decodeField(fo)
		if err != nil {
			return nil, err
		}
		e.Expand = &field
	}
	return e, nil
}

// urlOf accepts either "image": "url" or "image": {"url": "..."}.
func urlOf(obj Object, name string) string {
	if o, ok := object(obj, name); ok {
		u, _ := str(o, "url")
		return u
	}
	u, _ := str(obj, name)
	return u
}

func decodeField(obj Object) (model.Field, error) {
	f := model.Field{}
	f.Name, _ = str(obj, "name")
	f.Value, _ = str(obj, "value")
	if v, ok := obj.Get("inline"); ok && v != nil {
		inline, err := resolve.Bool(v)
		if err != nil {
			return f, tmplerr.Wrap(tmplerr.Validation, err, "field inline")
		}
		f.Inline = inline
	}
	return f, nil
}

func decodeFiles(items []any) ([]model.File, error) {
	var out []model.File
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, model.File{Path: t})
		case Object:
			f := model.File{}
			f.Path, _ = str(t, "path", "fp")
			f.Name, _ = str(t, "filename", "name")
			f.Description, _ = str(t, "description")
			if v, ok := t.Get("spoiler"); ok && v != nil {
				spoiler, err := resolve.Bool(v)
				if err != nil {
					return nil, tmplerr.Wrap(tmplerr.Validation, err, "file spoiler")
				}
				f.Spoiler = spoiler
			}
			out = append(out, f)
		default:
			return nil, tmplerr.New(tmplerr.Validation, "file must be a path or an object")
		}
	}
	return out, nil
}

func decodeMentions(obj Object) (*model.Mentions, error) {
	m := &model.Mentions{}
	var err error
	if m.Everyone, err = boolPtr(obj, "everyone"); err != nil {
		return nil, err
	}
	if m.RepliedUser, err = boolPtr(obj, "replied_user"); err != nil {
		return nil, err
	}
	if m.Users, m.UserIDs, err = flagOrIDs(obj, "users"); err != nil {
		return nil, err
	}
	if m.Roles, m.RoleIDs, err = flagOrIDs(obj, "roles"); err != nil {
		return nil, err
	}
	return m, nil
}

// flagOrIDs reads a mention target given either as a boolean or as an
// array of snowflake ids.
func flagOrIDs(obj Object, name string) (*bool, []string, error) {
	v, ok := obj.Get(name)
	if !ok || v == nil {
		return nil, nil, nil
	}
	if l, ok := v.([]any); ok {
		ids := make([]string, 0, len(l))
		for _, id := range l {
			s, ok := model.Attrs{"id": id}.String("id")
			if !ok {
				return nil, nil, tmplerr.New(tmplerr.Validation, "mentions %s: id must be a scalar", name)
			}
			ids = append(ids, s)
		}
		return nil, ids, nil
	}
	b, err := resolve.Bool(v)
	if err != nil {
		return nil, nil, tmplerr.Wrap(tmplerr.Validation, err, "mentions %s", name)
	}
	return &b, nil, nil
}

func decodeReference(obj Object) *model.Reference {
	r := &model.Reference{}
	r.MessageID, _ = str(obj, "message_id")
	r.ChannelID, _ = str(obj, "channel_id")
	r.GuildID, _ = str(obj, "guild_id")
	return r
}

// decodeView accepts {"timeout": n, "components": ...} or a bare
// components collection.
func decodeView(v any) (*model.View, error) {
	view := &model.View{}
	var err error
	obj, ok := v.(Object)
	if !ok {
		view.Components, err = decodeComponents(v)
		return view, err
	}
	if view.Timeout, err = floatPtr(obj, "timeout"); err != nil {
		return nil, err
	}
	if comps, ok := obj.Get("components"); ok {
		if view.Components, err = decodeComponents(comps); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// decodeComponents accepts an object keyed by component key, or an array
// of components carrying their own "key".
func decodeComponents(v any) ([]model.Component, error) {
	var out []model.Component
	switch t := v.(type) {
	case Object:
		for _, m := range t {
			co, ok := m.Value.(Object)
			if !ok {
				return nil, tmplerr.New(tmplerr.Validation, "component %q must be an object", m.Key)
			}
			c, err := decodeComponent(co)
			if err != nil {
				return nil, err
			}
			if c.Key == "" {
				c.Key = m.Key
			}
			out = append(out, c)
		}
	case []any:
		for i, item := range t {
			co, ok := item.(Object)
			if !ok {
				return nil, tmplerr.New(tmplerr.Validation, "component %d must be an object", i)
			}
			c, err := decodeComponent(co)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	case nil:
	default:
		return nil, tmplerr.New(tmplerr.Validation, "components must be an object or an array")
	}
	return out, nil
}

func decodeComponent(obj Object) (model.Component, error) {
	c := model.Component{Attrs: model.Attrs{}}
	for _, m := range obj {
		switch m.Key {
		case "type", "kind":
			c.Kind, _ = model.Attrs{"k": m.Value}.String("k")
			c.Kind = strings.ToLower(c.Kind)
		case "key":
			c.Key, _ = model.Attrs{"k": m.Value}.String("k")
		case "options":
			opts, ok := m.Value.([]any)
			if !ok {
				return c, tmplerr.New(tmplerr.Validation, "options must be an array")
			}
			for _, o := range opts {
				switch ot := o.(type) {
				case Object:
					c.Options = append(c.Options, model.Attrs(ot.Map()))
				case string:
					c.Options = append(c.Options, model.Attrs{"label": ot})
				default:
					return c, tmplerr.New(tmplerr.Validation, "select option must be an object or a label")
				}
			}
		default:
			c.Attrs[m.Key] = plain(m.Value)
		}
	}
	return c, nil
}

func decodeMenu(obj Object) (*model.Menu, error) {
	m := &model.Menu{}
	var err error
	if m.Timeout, err = floatPtr(obj, "timeout"); err != nil {
		return nil, err
	}
	for _, p := range list(obj, "pages") {
		switch t := p.(type) {
		case string:
			m.Pages = append(m.Pages, model.Page{Key: t})
		case Object:
			if k, ok := str(t, "key", "ref"); ok && len(t) == 1 {
				m.Pages = append(m.Pages, model.Page{Key: k})
				continue
			}
			inline, err := decodeElement(t)
			if err != nil {
				return nil, err
			}
			m.Pages = append(m.Pages, model.Page{Inline: inline})
		default:
			return nil, tmplerr.New(tmplerr.Validation, "menu page must be a key or an element")
		}
	}
	if prev, ok := object(obj, "previous", "left", "back"); ok {
		c, err := decodeComponent(prev)
		if err != nil {
			return nil, err
		}
		c.Kind = "button"
		m.Previous = &c
	}
	if next, ok := object(obj, "next", "right", "forward"); ok {
		c, err := decodeComponent(next)
		if err != nil {
			return nil, err
		}
		c.Kind = "button"
		m.Next = &c
	}
	return m, nil
}

func decodeModal(obj Object) (*model.Modal, error) {
	m := &model.Modal{}
	m.Title, _ = str(obj, "title")
	m.CustomID, _ = str(obj, "custom_id")
	var err error
	if m.Timeout, err = floatPtr(obj, "timeout"); err != nil {
		return nil, err
	}
	if comps, ok := obj.Get("components"); ok {
		if m.Components, err = decodeComponents(comps); err != nil {
			return nil, err
		}
	} else if view, ok := obj.Get("view"); ok {
		v, err := decodeView(view)
		if err != nil {
			return nil, err
		}
		m.Components = v.Components
	}
	return m, nil
}

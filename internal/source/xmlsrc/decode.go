package xmlsrc

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Decode classifies the element by tag and decodes it.
func (f *Fragment) Decode() (*model.Element, error) {
	el, err := decodeElement(f.el)
	if err != nil {
		return nil, err
	}
	el.Key = f.key
	return el, nil
}

func decodeElement(el *etree.Element) (*model.Element, error) {
	switch strings.ToLower(el.Tag) {
	case "message":
		msg, err := decodeMessage(el)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindMessage, Message: msg}, nil

	case "embed":
		// An embed at the top level is the message's only embed; its
		// message-level fields sit alongside the embed fields.
		msg, err := decodeMessage(el)
		if err != nil {
			return nil, err
		}
		embed, err := decodeEmbed(el)
		if err != nil {
			return nil, err
		}
		msg.Embeds = append([]*model.Embed{embed}, msg.Embeds...)
		kind := model.KindMessage
		expansive, err := boolValue(el, "expansive")
		if err != nil {
			return nil, err
		}
		if expansive || msg.PageKey != "" {
			kind = model.KindExpansive
		}
		return &model.Element{Kind: kind, Message: msg}, nil

	case "expansive", "expansive_message", "expansive_embed":
		msg, err := decodeMessage(el)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindExpansive, Message: msg}, nil

	case "menu":
		menu, err := decodeMenu(el)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindMenu, Menu: menu}, nil

	case "modal":
		modal, err := decodeModal(el)
		if err != nil {
			return nil, err
		}
		return &model.Element{Kind: model.KindModal, Modal: modal}, nil

	default:
		return nil, tmplerr.New(tmplerr.UnrecognizedType, "unrecognized element tag <%s>", el.Tag)
	}
}

// value reads a scalar given either as an attribute or as child text.
// Attributes win.
func value(el *etree.Element, names ...string) (string, bool) {
	for _, name := range names {
		if a := el.SelectAttr(name); a != nil {
			return a.Value, true
		}
		if c := el.SelectElement(name); c != nil {
			return text(c), true
		}
	}
	return "", false
}

// text returns the element's text content with source indentation removed.
func text(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return source.Dedent(b.String())
}

func boolValue(el *etree.Element, names ...string) (bool, error) {
	v, ok := value(el, names...)
	if !ok {
		return false, nil
	}
	b, err := resolve.Bool(v)
	if err != nil {
		return false, tmplerr.Wrap(tmplerr.Validation, err, "<%s> %s", el.Tag, names[0])
	}
	return b, nil
}

func boolPtr(el *etree.Element, names ...string) (*bool, error) {
	v, ok := value(el, names...)
	return source.BoolPtr(names[0], v, ok)
}

func floatPtr(el *etree.Element, names ...string) (*float64, error) {
	v, ok := value(el, names...)
	if ok && strings.TrimSpace(v) == "" {
		return nil, nil
	}
	return source.FloatPtr(names[0], v, ok)
}

func decodeMessage(el *etree.Element) (*model.Message, error) {
	msg := &model.Message{}
	var err error

	if c, ok := value(el, "content"); ok {
		msg.Content = &c
	}
	if n, ok := value(el, "nonce"); ok {
		msg.Nonce = &n
	}
	msg.PageKey, _ = value(el, "page_key", "page_number_key")

	for _, e := range el.SelectElements("embed") {
		embed, err := decodeEmbed(e)
		if err != nil {
			return nil, err
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	if embeds := el.SelectElement("embeds"); embeds != nil {
		for _, e := range embeds.SelectElements("embed") {
			embed, err := decodeEmbed(e)
			if err != nil {
				return nil, err
			}
			msg.Embeds = append(msg.Embeds, embed)
		}
	}

	if v := firstChild(el, "view", "components"); v != nil {
		if msg.View, err = decodeView(v); err != nil {
			return nil, err
		}
	}

	msg.Files = decodeFiles(el)

	if m := firstChild(el, "mentions", "allowed_mentions"); m != nil {
		if msg.Mentions, err = decodeMentions(m); err != nil {
			return nil, err
		}
	}
	if r := firstChild(el, "reference", "message_reference"); r != nil {
		msg.Reference = decodeReference(r)
	}

	if msg.TTS, err = boolPtr(el, "tts"); err != nil {
		return nil, err
	}
	if msg.Ephemeral, err = boolPtr(el, "ephemeral"); err != nil {
		return nil, err
	}
	if msg.Silent, err = boolPtr(el, "silent"); err != nil {
		return nil, err
	}
	if msg.SuppressEmbeds, err = boolPtr(el, "suppress_embeds"); err != nil {
		return nil, err
	}
	if msg.DeleteAfter, err = floatPtr(el, "delete_after"); err != nil {
		return nil, err
	}
	return msg, nil
}

func firstChild(el *etree.Element, tags ...string) *etree.Element {
	for _, tag := range tags {
		if c := el.SelectElement(tag); c != nil {
			return c
		}
	}
	return nil
}

func decodeEmbed(el *etree.Element) (*model.Embed, error) {
	e := &model.Embed{}
	if t, ok := value(el, "title"); ok {
		e.Title = &t
	}
	e.Description, _ = value(el, "description")
	e.Colour, _ = value(el, "colour", "color")
	e.Type, _ = value(el, "type")
	e.URL, _ = value(el, "url")
	e.Timestamp, _ = value(el, "timestamp")
	e.Image = urlValue(el, "image")
	e.Thumbnail = urlValue(el, "thumbnail")

	if a := el.SelectElement("author"); a != nil {
		e.Author = &model.Author{}
		e.Author.Name, _ = value(a, "name")
		if e.Author.Name == "" {
			e.Author.Name = text(a)
		}
		e.Author.URL, _ = value(a, "url")
		e.Author.Icon, _ = value(a, "icon", "icon_url")
	}
	if f := el.SelectElement("footer"); f != nil {
		e.Footer = &model.Footer{}
		e.Footer.Text, _ = value(f, "text")
		if e.Footer.Text == "" {
			e.Footer.Text = text(f)
		}
		e.Footer.Icon, _ = value(f, "icon", "icon_url")
	}

	fields := el.SelectElements("field")
	if c := el.SelectElement("fields"); c != nil {
		fields = append(fields, c.SelectElements("field")...)
	}
	for _, fe := range fields {
		field, err := decodeField(fe)
		if err != nil {
			return nil, err
		}
		expand, err := boolValue(fe, "expand")
		if err != nil {
			return nil, err
		}
		if expand {
			e.Expand = &field
			continue
		}
		e.Fields = append(e.Fields, field)
	}
	return e, nil
}

func urlValue(el *etree.Element, tag string) string {
	if a := el.SelectAttr(tag); a != nil {
		return a.Value
	}
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	if u := c.SelectAttr("url"); u != nil {
		return u.Value
	}
	return text(c)
}

func decodeField(el *etree.Element) (model.Field, error) {
	f := model.Field{}
	f.Name, _ = value(el, "name")
	var ok bool
	if f.Value, ok = value(el, "value"); !ok {
		f.Value = text(el)
	}
	inline, err := boolValue(el, "inline")
	if err != nil {
		return f, err
	}
	f.Inline = inline
	return f, nil
}

func decodeFiles(el *etree.Element) []model.File {
	files := el.SelectElements("file")
	if c := el.SelectElement("files"); c != nil {
		files = append(files, c.SelectElements("file")...)
	}
	var out []model.File
	for _, fe := range files {
		f := model.File{}
		if p, ok := value(fe, "path", "fp"); ok {
			f.Path = p
		} else {
			f.Path = text(fe)
		}
		f.Name, _ = value(fe, "filename", "name")
		f.Description, _ = value(fe, "description")
		spoiler, _ := value(fe, "spoiler")
		f.Spoiler, _ = resolve.Bool(spoiler)
		out = append(out, f)
	}
	return out
}

func decodeMentions(el *etree.Element) (*model.Mentions, error) {
	m := &model.Mentions{}
	var err error
	if m.Everyone, err = boolPtr(el, "everyone"); err != nil {
		return nil, err
	}
	if m.RepliedUser, err = boolPtr(el, "replied_user"); err != nil {
		return nil, err
	}
	m.Users, m.UserIDs, err = flagOrIDs(el, "users")
	if err != nil {
		return nil, err
	}
	m.Roles, m.RoleIDs, err = flagOrIDs(el, "roles")
	if err != nil {
		return nil, err
	}
	return m, nil
}

// flagOrIDs reads a mention target that is either a boolean or a
// comma-separated list of snowflake ids.
func flagOrIDs(el *etree.Element, name string) (*bool, []string, error) {
	v, ok := value(el, name)
	if !ok {
		return nil, nil, nil
	}
	if b, err := resolve.Bool(v); err == nil {
		return &b, nil, nil
	}
	ids := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' })
	return nil, ids, nil
}

func decodeReference(el *etree.Element) *model.Reference {
	r := &model.Reference{}
	r.MessageID, _ = value(el, "message_id")
	r.ChannelID, _ = value(el, "channel_id")
	r.GuildID, _ = value(el, "guild_id")
	return r
}

func decodeView(el *etree.Element) (*model.View, error) {
	v := &model.View{}
	var err error
	if v.Timeout, err = floatPtr(el, "timeout"); err != nil {
		return nil, err
	}
	for _, c := range el.ChildElements() {
		if c.Tag == "timeout" {
			continue
		}
		v.Components = append(v.Components, decodeComponent(c))
	}
	return v, nil
}

// decodeComponent gathers a control's attribute bag: XML attributes,
// <option> children, and other children as text, structured maps or lists.
func decodeComponent(el *etree.Element) model.Component {
	c := model.Component{Kind: strings.ToLower(el.Tag), Attrs: model.Attrs{}}
	for _, a := range el.Attr {
		if a.Key == "key" {
			c.Key = a.Value
			continue
		}
		c.Attrs[a.Key] = a.Value
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "key":
			c.Key = text(child)
		case "option":
			c.Options = append(c.Options, optionAttrs(child))
		case "options":
			for _, o := range child.SelectElements("option") {
				c.Options = append(c.Options, optionAttrs(o))
			}
		default:
			addChild(c.Attrs, child.Tag, childValue(child))
		}
	}
	return c
}

func optionAttrs(el *etree.Element) model.Attrs {
	attrs := model.Attrs{}
	for _, a := range el.Attr {
		attrs[a.Key] = a.Value
	}
	for _, child := range el.ChildElements() {
		addChild(attrs, child.Tag, childValue(child))
	}
	if _, ok := attrs["label"]; !ok {
		if t := text(el); t != "" {
			attrs["label"] = t
		}
	}
	return attrs
}

// childValue is the child's text when it is a leaf, otherwise a map of its
// attributes and children.
func childValue(el *etree.Element) any {
	if len(el.Attr) == 0 && len(el.ChildElements()) == 0 {
		return text(el)
	}
	m := map[string]any{}
	for _, a := range el.Attr {
		m[a.Key] = a.Value
	}
	for _, child := range el.ChildElements() {
		addChild(m, child.Tag, childValue(child))
	}
	return m
}

// addChild stores a child value; repeated tags collect into a list.
func addChild(m map[string]any, tag string, v any) {
	prev, ok := m[tag]
	if !ok {
		m[tag] = v
		return
	}
	if list, isList := prev.([]any); isList {
		m[tag] = append(list, v)
		return
	}
	m[tag] = []any{prev, v}
}

func decodeMenu(el *etree.Element) (*model.Menu, error) {
	m := &model.Menu{}
	var err error
	if m.Timeout, err = floatPtr(el, "timeout"); err != nil {
		return nil, err
	}

	children := el.ChildElements()
	if pages := el.SelectElement("pages"); pages != nil {
		children = append(children, pages.ChildElements()...)
	}
	for _, c := range children {
		switch strings.ToLower(c.Tag) {
		case "page":
			page, err := decodePage(c)
			if err != nil {
				return nil, err
			}
			m.Pages = append(m.Pages, page)
		case "message", "embed", "expansive", "expansive_message", "expansive_embed":
			inline, err := decodeElement(c)
			if err != nil {
				return nil, err
			}
			m.Pages = append(m.Pages, model.Page{Inline: inline})
		case "previous", "left", "back":
			arrow := decodeComponent(c)
			arrow.Kind = "button"
			m.Previous = &arrow
		case "next", "right", "forward":
			arrow := decodeComponent(c)
			arrow.Kind = "button"
			m.Next = &arrow
		}
	}
	return m, nil
}

func decodePage(el *etree.Element) (model.Page, error) {
	if k, ok := value(el, "key", "ref"); ok && len(el.ChildElements()) == 0 {
		return model.Page{Key: k}, nil
	}
	children := el.ChildElements()
	if len(children) != 1 {
		if t := text(el); t != "" {
			return model.Page{Key: t}, nil
		}
		return model.Page{}, tmplerr.New(tmplerr.Validation, "<page> needs a key or exactly one inline element")
	}
	inline, err := decodeElement(children[0])
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Inline: inline}, nil
}

func decodeModal(el *etree.Element) (*model.Modal, error) {
	m := &model.Modal{}
	m.Title, _ = value(el, "title")
	m.CustomID, _ = value(el, "custom_id")
	var err error
	if m.Timeout, err = floatPtr(el, "timeout"); err != nil {
		return nil, err
	}

	container := firstChild(el, "components", "view")
	if container == nil {
		container = el
	}
	for _, c := range container.ChildElements() {
		switch c.Tag {
		case "title", "custom_id", "timeout", "components", "view":
			continue
		}
		m.Components = append(m.Components, decodeComponent(c))
	}
	return m, nil
}

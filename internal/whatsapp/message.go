package whatsapp

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Cloud API limits for interactive messages.
const (
	maxReplyButtons = 3
	maxListRows     = 10
	maxButtonTitle  = 20
	maxRowTitle     = 24
	maxRowDesc      = 72
	maxHeader       = 60
)

// optionSep joins a select's custom id and the chosen value in list row
// ids. ParseReplyID splits at the first one.
const optionSep = ":"

// BuildRequest converts m into a Cloud API request. Embeds become
// formatted text. Up to three buttons become reply buttons; selects, or
// more buttons than that, become a list; a lone link button becomes a
// cta_url message.
func BuildRequest(to string, m *ui.Message) (SendMessageRequest, error) {
	var (
		buttons []*discordgo.Button
		links   []*discordgo.Button
		selects []*discordgo.SelectMenu
	)
	if m.View != nil {
		for _, it := range m.View.Items() {
			switch c := it.Component.(type) {
			case *discordgo.Button:
				if c.Disabled {
					continue
				}
				if c.Style == discordgo.LinkButton {
					links = append(links, c)
				} else {
					buttons = append(buttons, c)
				}
			case *discordgo.SelectMenu:
				if c.MenuType != discordgo.StringSelectMenu && c.MenuType != 0 {
					return SendMessageRequest{}, tmplerr.New(tmplerr.Validation, "whatsapp has no %s select", selectName(c.MenuType))
				}
				selects = append(selects, c)
			}
		}
	}

	// Interactive messages carry the first embed's title as their header.
	var header *InteractiveHeader
	interactive := len(buttons) > 0 || len(selects) > 0 || len(links) == 1
	if interactive && len(m.Embeds) > 0 && m.Embeds[0].Title != "" {
		header = &InteractiveHeader{Type: "text", Text: truncate(m.Embeds[0].Title, maxHeader)}
	}
	body := messageText(m, header != nil)

	var req SendMessageRequest
	switch {
	case len(buttons) == 0 && len(selects) == 0 && len(links) == 1:
		req = ctaMessage(to, nonEmpty(body), truncate(buttonTitle(links[0]), maxButtonTitle), links[0].URL)
	case len(buttons) == 0 && len(selects) == 0:
		for _, l := range links {
			body += "\n" + buttonTitle(l) + ": " + l.URL
		}
		return textMessage(to, body), nil
	default:
		for _, l := range links {
			body += "\n" + buttonTitle(l) + ": " + l.URL
		}
		if len(selects) == 0 && len(buttons) <= maxReplyButtons {
			req = buttonsMessage(to, nonEmpty(body), replyButtons(buttons))
			break
		}
		sections, label, err := listSections(buttons, selects)
		if err != nil {
			return SendMessageRequest{}, err
		}
		req = listMessage(to, nonEmpty(body), truncate(label, maxButtonTitle), sections)
	}

	req.Interactive.Header = header
	if len(m.Embeds) > 0 && m.Embeds[0].Footer != nil && m.Embeds[0].Footer.Text != "" {
		req.Interactive.Footer = &InteractiveFooter{Text: truncate(m.Embeds[0].Footer.Text, maxHeader)}
	}
	return req, nil
}

// messageText flattens content and embeds into WhatsApp-formatted text.
// skipTitle leaves out the first embed's title when a header carries it.
func messageText(m *ui.Message, skipTitle bool) string {
	var parts []string
	if m.Content != nil && *m.Content != "" {
		parts = append(parts, *m.Content)
	}
	for i, e := range m.Embeds {
		var b strings.Builder
		if e.Author != nil && e.Author.Name != "" {
			b.WriteString("_" + e.Author.Name + "_\n")
		}
		if e.Title != "" && !(skipTitle && i == 0) {
			b.WriteString("*" + e.Title + "*\n")
		}
		if e.Description != "" {
			b.WriteString(e.Description + "\n")
		}
		for _, f := range e.Fields {
			b.WriteString("\n*" + f.Name + "*\n" + f.Value + "\n")
		}
		if e.URL != "" {
			b.WriteString(e.URL + "\n")
		}
		if e.Image != nil && e.Image.URL != "" {
			b.WriteString(e.Image.URL + "\n")
		}
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func replyButtons(buttons []*discordgo.Button) []Button {
	out := make([]Button, len(buttons))
	for i, b := range buttons {
		out[i] = Button{
			Type:  "reply",
			Reply: ButtonReply{ID: b.CustomID, Title: truncate(buttonTitle(b), maxButtonTitle)},
		}
	}
	return out
}

// listSections puts loose buttons in one section and each select in its
// own. Row ids of select options carry the select id and the value.
func listSections(buttons []*discordgo.Button, selects []*discordgo.SelectMenu) ([]Section, string, error) {
	var (
		sections []Section
		rows     int
		label    = "Options"
	)
	if len(buttons) > 0 {
		s := Section{Title: "Actions"}
		for _, b := range buttons {
			s.Rows = append(s.Rows, SectionRow{ID: b.CustomID, Title: truncate(buttonTitle(b), maxRowTitle)})
		}
		rows += len(s.Rows)
		sections = append(sections, s)
	}
	for _, sel := range selects {
		s := Section{Title: truncate(sel.Placeholder, maxRowTitle)}
		if sel.Placeholder != "" && len(selects) == 1 {
			label = sel.Placeholder
		}
		for _, o := range sel.Options {
			s.Rows = append(s.Rows, SectionRow{
				ID:          sel.CustomID + optionSep + o.Value,
				Title:       truncate(o.Label, maxRowTitle),
				Description: truncate(o.Description, maxRowDesc),
			})
		}
		rows += len(s.Rows)
		sections = append(sections, s)
	}
	if rows > maxListRows {
		return nil, "", tmplerr.New(tmplerr.Validation, "whatsapp lists hold at most %d rows, got %d", maxListRows, rows)
	}
	// Titles are required once there is more than one section.
	if len(sections) > 1 {
		for i := range sections {
			if sections[i].Title == "" {
				sections[i].Title = "Options"
			}
		}
	}
	return sections, label, nil
}

// ParseReplyID splits a reply id back into a custom id and, for list rows
// built from select options, the chosen value.
func ParseReplyID(id string) (customID string, values []string) {
	if i := strings.Index(id, optionSep); i >= 0 {
		return id[:i], []string{id[i+len(optionSep):]}
	}
	return id, nil
}

func buttonTitle(b *discordgo.Button) string {
	if b.Label != "" {
		return b.Label
	}
	if b.Emoji != nil {
		return b.Emoji.Name
	}
	return "Open"
}

func selectName(t discordgo.SelectMenuType) string {
	switch t {
	case discordgo.UserSelectMenu:
		return "user"
	case discordgo.RoleSelectMenu:
		return "role"
	case discordgo.MentionableSelectMenu:
		return "mentionable"
	case discordgo.ChannelSelectMenu:
		return "channel"
	}
	return "typed"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "\u200b"
	}
	return s
}

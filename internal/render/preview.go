package render

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/menu"
	"github.com/lojasmm/cartaz/internal/ui"
)

// Preview is a JSON-friendly picture of a render result, used by the CLI
// and the preview API. Callbacks and events do not survive it.
type Preview struct {
	Kind      string                             `json:"kind"`
	Message   *MessagePreview                    `json:"message,omitempty"`
	Pages     []*MessagePreview                  `json:"pages,omitempty"`
	FrontPage int                                `json:"front_page,omitempty"`
	Timeout   float64                            `json:"timeout,omitempty"`
	Modal     *discordgo.InteractionResponseData `json:"modal,omitempty"`
}

// MessagePreview is the channel payload plus the options the payload itself
// cannot carry.
type MessagePreview struct {
	*discordgo.MessageSend
	Ephemeral   bool     `json:"ephemeral,omitempty"`
	DeleteAfter float64  `json:"delete_after,omitempty"`
	Files       []string `json:"files,omitempty"`
}

// NewPreview describes res.
func NewPreview(res Result) (*Preview, error) {
	p := &Preview{Kind: res.Kind().String()}
	switch v := res.(type) {
	case *ui.Message:
		m, err := previewMessage(v)
		if err != nil {
			return nil, err
		}
		p.Message = m
		if v.View != nil {
			p.Timeout = v.View.Timeout().Seconds()
		}
	case *menu.Menu:
		for _, page := range v.Pages() {
			m, err := previewMessage(page)
			if err != nil {
				return nil, err
			}
			p.Pages = append(p.Pages, m)
		}
		p.FrontPage = v.FrontPage()
		p.Timeout = v.Timeout().Seconds()
	case *ui.Modal:
		data, err := v.ResponseData()
		if err != nil {
			return nil, err
		}
		p.Modal = data
		p.Timeout = v.Timeout().Seconds()
	default:
		return nil, fmt.Errorf("render: cannot preview %T", res)
	}
	return p, nil
}

func previewMessage(m *ui.Message) (*MessagePreview, error) {
	send, err := m.Send()
	if err != nil {
		return nil, err
	}
	out := &MessagePreview{MessageSend: send, Ephemeral: m.Ephemeral != nil && *m.Ephemeral}
	if m.DeleteAfter != nil {
		out.DeleteAfter = m.DeleteAfter.Seconds()
	}
	for _, f := range m.Files {
		out.Files = append(out.Files, f.Path)
	}
	return out, nil
}

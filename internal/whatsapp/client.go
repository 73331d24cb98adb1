package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lojasmm/cartaz/internal/ui"
)

const apiURL = "https://graph.facebook.com/v21.0"

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	phoneNumberID string
	accessToken   string
	baseURL       string
	http          *http.Client
}

func NewClient(phoneNumberID, accessToken string) *Client {
	return &Client{
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		baseURL:       apiURL,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at another API root, such as a test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// SendMessage delivers a rendered message, picking the interactive type
// its components allow.
func (c *Client) SendMessage(to string, m *ui.Message) error {
	req, err := BuildRequest(to, m)
	if err != nil {
		return err
	}
	return c.send(req)
}

func (c *Client) SendText(to, body string) error {
	return c.send(textMessage(to, body))
}

func textMessage(to, body string) SendMessageRequest {
	return SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &SendText{Body: body, PreviewURL: strings.Contains(body, "https://")},
	}
}

func buttonsMessage(to, body string, buttons []Button) SendMessageRequest {
	return SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &Interactive{
			Type:   "button",
			Body:   InteractiveBody{Text: body},
			Action: InteractiveAction{Buttons: buttons},
		},
	}
}

// ctaMessage is a body with a single link button.
func ctaMessage(to, body, label, link string) SendMessageRequest {
	return SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &Interactive{
			Type: "cta_url",
			Body: InteractiveBody{Text: body},
			Action: InteractiveAction{
				Name:       "cta_url",
				Parameters: &CTAParameters{DisplayText: label, URL: link},
			},
		},
	}
}

func listMessage(to, body, buttonText string, sections []Section) SendMessageRequest {
	return SendMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &Interactive{
			Type: "list",
			Body: InteractiveBody{Text: body},
			Action: InteractiveAction{
				Button:   buttonText,
				Sections: sections,
			},
		},
	}
}

func (c *Client) send(msg SendMessageRequest) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp API status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

package whatsapp

import (
	"encoding/json"
	"log"
	"net/http"
)

// MessageHandler is called for each incoming text message with (senderPhone, messageID, messageBody).
type MessageHandler func(phone, messageID, text string)

// ReplyHandler is called for each button or list reply with the id of the
// chosen button or row.
type ReplyHandler func(phone, messageID, replyID string)

type WebhookHandler struct {
	verifyToken string
	onMessage   MessageHandler
	onReply     ReplyHandler
}

// NewWebhookHandler wires the callbacks; either may be nil.
func NewWebhookHandler(verifyToken string, onMessage MessageHandler, onReply ReplyHandler) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		onMessage:   onMessage,
		onReply:     onReply,
	}
}

// HandleVerify handles the GET webhook verification from Meta.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/get-started#webhook-verification
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleIncoming processes incoming webhook POST notifications.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks/components
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("webhook: failed to decode payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Meta requires 200 OK quickly; callbacks run synchronously and must not block.
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.route(msg)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) route(msg Message) {
	switch msg.Type {
	case "text":
		if msg.Text != nil && h.onMessage != nil {
			h.onMessage(msg.From, msg.ID, msg.Text.Body)
		}
	case "interactive":
		if msg.Interactive == nil || h.onReply == nil {
			return
		}
		switch msg.Interactive.Type {
		case "button_reply":
			if msg.Interactive.ButtonReply != nil {
				h.onReply(msg.From, msg.ID, msg.Interactive.ButtonReply.ID)
			}
		case "list_reply":
			if msg.Interactive.ListReply != nil {
				h.onReply(msg.From, msg.ID, msg.Interactive.ListReply.ID)
			}
		}
	}
}

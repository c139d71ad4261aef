// Package whatsapp talks to the WhatsApp Cloud API: it extracts the inbound
// message from webhook deliveries and sends text, button and image replies.
package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrNoMessage is returned for deliveries that carry no user message, such as
// delivery and read status updates.
var ErrNoMessage = errors.New("no inbound message")

// Message is the single user message carried by a webhook delivery.
type Message struct {
	ID          string
	From        string
	Type        string
	Text        string
	ButtonID    string
	ButtonTitle string
}

const messagePath = "entry.0.changes.0.value.messages.0"

// ParseWebhook pulls the first message out of a webhook body. Text messages
// fill Text; interactive button replies (and legacy template buttons) fill
// ButtonID and ButtonTitle.
func ParseWebhook(body []byte) (*Message, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	raw, ok := getPath(payload, messagePath).(map[string]any)
	if !ok {
		return nil, ErrNoMessage
	}
	m := &Message{
		ID:   getString(raw, "id"),
		From: strings.TrimSpace(getString(raw, "from")),
		Type: getString(raw, "type"),
	}
	if m.From == "" {
		return nil, ErrNoMessage
	}
	switch m.Type {
	case "text":
		m.Text = getString(raw, "text.body")
	case "interactive":
		m.ButtonID = getString(raw, "interactive.button_reply.id", "interactive.list_reply.id")
		m.ButtonTitle = getString(raw, "interactive.button_reply.title", "interactive.list_reply.title")
	case "button":
		m.ButtonID = getString(raw, "button.payload")
		m.ButtonTitle = getString(raw, "button.text")
	}
	return m, nil
}

// VerifySignature checks an X-Hub-Signature-256 header against the app
// secret.
func VerifySignature(secret string, body []byte, header string) bool {
	sig := strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	provided, err := hex.DecodeString(sig)
	if err != nil || len(provided) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// getString returns the first non-empty string found at one of paths.
func getString(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s, ok := getPath(m, p).(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// getPath walks a dot-separated path; numeric segments index into arrays.
func getPath(m map[string]any, path string) any {
	var cur any = m
	for _, p := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[p]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

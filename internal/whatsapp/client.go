package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	// MaxButtons is the Cloud API limit for reply buttons.
	MaxButtons     = 3
	maxButtonTitle = 20
)

// Button is a reply button.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Config holds Cloud API settings.
type Config struct {
	BaseURL       string
	APIVersion    string
	Token         string
	PhoneNumberID string
	// SendRPS throttles outbound requests; zero disables throttling.
	SendRPS float64
}

// Client sends messages through the Cloud API.
type Client struct {
	http    *http.Client
	url     string
	token   string
	limiter *rate.Limiter
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://graph.facebook.com"
	}
	version := cfg.APIVersion
	if version == "" {
		version = "v19.0"
	}
	c := &Client{
		http:  &http.Client{Timeout: 15 * time.Second},
		url:   fmt.Sprintf("%s/%s/%s/messages", base, version, cfg.PhoneNumberID),
		token: cfg.Token,
	}
	if cfg.SendRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SendRPS), 1)
	}
	return c
}

// SendError carries the API's status and response body.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("whatsapp send: status %d: %s", e.Status, e.Body)
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": body},
	})
}

// SendButtons sends body with up to MaxButtons reply buttons.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []Button) error {
	if len(buttons) == 0 || len(buttons) > MaxButtons {
		return fmt.Errorf("whatsapp: %d buttons, want 1..%d", len(buttons), MaxButtons)
	}
	action := make([]map[string]any, len(buttons))
	for i, b := range buttons {
		action[i] = map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": truncate(b.Title, maxButtonTitle)},
		}
	}
	return c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]any{"buttons": action},
		},
	})
}

// SendImage sends an image by URL with a caption.
func (c *Client) SendImage(ctx context.Context, to, link, caption string) error {
	return c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "image",
		"image":             map[string]string{"link": link, "caption": caption},
	})
}

func (c *Client) post(ctx context.Context, payload map[string]any) error {
	if c.token == "" {
		return errors.New("whatsapp: WHATSAPP_TOKEN not set")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &SendError{Status: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

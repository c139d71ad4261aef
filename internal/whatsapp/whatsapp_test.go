package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textDelivery = `{
  "object": "whatsapp_business_account",
  "entry": [{"id": "1", "changes": [{"field": "messages", "value": {
    "messaging_product": "whatsapp",
    "messages": [{"from": "5491155550000", "id": "wamid.A", "type": "text", "text": {"body": "Shanghai"}}]
  }}]}]
}`

const buttonDelivery = `{
  "entry": [{"changes": [{"value": {
    "messages": [{"from": "5491155550000", "id": "wamid.B", "type": "interactive",
      "interactive": {"type": "button_reply", "button_reply": {"id": "mode_sea", "title": "Marítimo"}}}]
  }}]}]
}`

const statusDelivery = `{"entry": [{"changes": [{"value": {"statuses": [{"id": "wamid.A", "status": "read"}]}}]}]}`

func TestParseWebhookText(t *testing.T) {
	m, err := ParseWebhook([]byte(textDelivery))
	require.NoError(t, err)
	assert.Equal(t, "5491155550000", m.From)
	assert.Equal(t, "text", m.Type)
	assert.Equal(t, "Shanghai", m.Text)
	assert.Empty(t, m.ButtonID)
}

func TestParseWebhookButton(t *testing.T) {
	m, err := ParseWebhook([]byte(buttonDelivery))
	require.NoError(t, err)
	assert.Equal(t, "mode_sea", m.ButtonID)
	assert.Equal(t, "Marítimo", m.ButtonTitle)
}

func TestParseWebhookNoMessage(t *testing.T) {
	_, err := ParseWebhook([]byte(statusDelivery))
	assert.True(t, errors.Is(err, ErrNoMessage))

	_, err = ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(textDelivery)
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature("s3cret", body, sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("s3cret", body, "sha256=zz"))
	assert.False(t, VerifySignature("s3cret", body, ""))
}

func TestClientSendButtons(t *testing.T) {
	var got map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIVersion: "v19.0", Token: "tok", PhoneNumberID: "123"})
	err := c.SendButtons(context.Background(), "549", "Elegí", []Button{
		{ID: "a", Title: "Un título demasiado largo para WhatsApp"},
		{ID: "b", Title: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "/v19.0/123/messages", path)
	assert.Equal(t, "interactive", got["type"])

	buttons := got["interactive"].(map[string]any)["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 2)
	title := buttons[0].(map[string]any)["reply"].(map[string]any)["title"].(string)
	assert.Equal(t, 20, len([]rune(title)))
}

func TestClientRejectsTooManyButtons(t *testing.T) {
	c := NewClient(Config{Token: "tok"})
	err := c.SendButtons(context.Background(), "549", "x", make([]Button, 4))
	assert.Error(t, err)
}

func TestClientSendErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad phone"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "tok", PhoneNumberID: "1", SendRPS: 50})
	err := c.SendText(context.Background(), "549", "hola")
	var se *SendError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Contains(t, se.Body, "bad phone")
}

func TestClientWithoutToken(t *testing.T) {
	c := NewClient(Config{})
	assert.Error(t, c.SendImage(context.Background(), "549", "https://x/img.png", "hola"))
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/parkseva/internal/config"
)

// WhatsAppSender sends text messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	Client        *http.Client
}

// NewWhatsAppSender builds a sender from the notification config.
func NewWhatsAppSender(cfg config.NotifyConfig) *WhatsAppSender {
	return &WhatsAppSender{
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		BaseURL:       strings.TrimRight(cfg.WhatsAppBaseURL, "/"),
		Client:        &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (w *WhatsAppSender) Configured() bool {
	return w.Token != "" && w.PhoneNumberID != ""
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// Send posts a text message; to is an E.164 number.
func (w *WhatsAppSender) Send(ctx context.Context, to, message string) (map[string]any, error) {
	if !w.Configured() {
		return nil, fmt.Errorf("whatsapp: %w", ErrNotConfigured)
	}
	body, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppText{Body: message},
	})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", w.BaseURL, w.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.Token)

	result, status, err := do(w.Client, req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: %w", err)
	}
	if status < 200 || status > 299 {
		// Graph errors look like {"error": {"message": "...", ...}}.
		if e, ok := result["error"].(map[string]any); ok {
			if msg, ok := e["message"].(string); ok && msg != "" {
				return nil, fmt.Errorf("whatsapp: %s", msg)
			}
		}
		return nil, fmt.Errorf("whatsapp: failed to send (%d)", status)
	}
	return result, nil
}

// do executes req and decodes a JSON object body.
func do(client *http.Client, req *http.Request) (map[string]any, int, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	result := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	return result, resp.StatusCode, nil
}

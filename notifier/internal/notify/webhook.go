package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/code-nisarg/SunKalp/notifier/internal/config"
)

// Webhook posts alert messages to a slack or generic HTTP target.
type Webhook struct {
	cfg    config.WebhookConfig
	client *http.Client
}

// NewWebhook creates a webhook channel for one configured target.
func NewWebhook(cfg config.WebhookConfig, client *http.Client) *Webhook {
	return &Webhook{cfg: cfg, client: client}
}

// Name implements Notifier.
func (w *Webhook) Name() string { return "webhook:" + w.cfg.Type }

// Send posts the message as JSON. Slack targets get the {"text": ...}
// envelope; generic targets get {"message": ...}.
func (w *Webhook) Send(ctx context.Context, message string) error {
	url := w.cfg.URL()
	if url == "" {
		return fmt.Errorf("webhook: url not set in environment")
	}

	var payload map[string]string
	switch w.cfg.Type {
	case "slack":
		payload = map[string]string{"text": message}
	default:
		payload = map[string]string{"message": message}
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: target returned HTTP %d", resp.StatusCode)
	}
	return nil
}

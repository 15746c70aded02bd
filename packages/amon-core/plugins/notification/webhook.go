package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookPlugin delivers an HMAC-SHA256-signed JSON payload to a contact's
// endpoint URL, under the X-Amon-Signature header. The plugin is
// stateless library code: it returns an error on failure and lets the
// dispatcher decide what to do with it (spec.md §4.D: log and continue,
// not fatal).
type WebhookPlugin struct {
	client *http.Client
	logger *zap.Logger
}

func NewWebhookPlugin(config map[string]any, logger *zap.Logger) (Plugin, error) {
	timeout := 10 * time.Second
	if t, ok := config["timeout_seconds"].(float64); ok && t > 0 {
		timeout = time.Duration(t) * time.Second
	}
	return &WebhookPlugin{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// webhookPayload is what lands at the contact's endpoint — recipient here
// is "<url>|<secret>" (Contact.Data): the part before '|' is the endpoint
// URL and the part after it is the HMAC signing secret (see splitRecipient).
type webhookPayload struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}

func (p *WebhookPlugin) Notify(ctx context.Context, event Event, recipient, message string) error {
	url, secret := splitRecipient(recipient)
	if url == "" {
		return fmt.Errorf("webhook: recipient is missing an endpoint url")
	}

	body, err := json.Marshal(webhookPayload{Event: event, Message: message})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Amon-Signature", computeHMAC(secret, body))

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("webhook delivery failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("webhook: delivery to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		p.logger.Warn("webhook non-2xx response", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook: delivery to %s failed: HTTP %d", url, resp.StatusCode)
	}

	p.logger.Info("webhook delivered", zap.String("url", url), zap.Int("status", resp.StatusCode))
	return nil
}

func computeHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// splitRecipient parses Contact.Data for the webhook medium, which is
// "<url>" or "<url>|<hmac-secret>".
func splitRecipient(recipient string) (url, secret string) {
	for i := 0; i < len(recipient); i++ {
		if recipient[i] == '|' {
			return recipient[:i], recipient[i+1:]
		}
	}
	return recipient, ""
}

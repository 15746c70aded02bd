package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// EmailPlugin sends a notification email. Currently a logging stub,
// standing in for a real provider call:
//
//	POST https://api.resend.com/emails
//	Authorization: Bearer <api_key>
//	{ "from": "...", "to": [...], "subject": "...", "html": "..." }
//
// Replace the logging in Notify with that call when a provider is chosen; the
// plugin contract (Notify) does not need to change.
type EmailPlugin struct {
	from   string
	apiKey string
	logger *zap.Logger
}

// NewEmailPlugin reads {from, api_key} out of the medium's config block.
func NewEmailPlugin(config map[string]any, logger *zap.Logger) (Plugin, error) {
	from, _ := config["from"].(string)
	if from == "" {
		from = "amon@localhost"
	}
	apiKey, _ := config["api_key"].(string)
	return &EmailPlugin{from: from, apiKey: apiKey, logger: logger}, nil
}

func (p *EmailPlugin) Notify(ctx context.Context, event Event, recipient, message string) error {
	if recipient == "" {
		return fmt.Errorf("email: recipient address is empty")
	}
	// TODO: replace with a real HTTP POST to the configured provider once
	// one is selected; for now this stub only logs.
	p.logger.Info("email dispatched (stub)",
		zap.String("to", recipient),
		zap.String("from", p.from),
		zap.String("subject", message),
	)
	return nil
}

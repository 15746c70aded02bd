package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SMSPlugin is a minimal third medium demonstrating the plugin contract
// without duplicating WebhookPlugin's HTTP machinery — a real
// implementation would call a provider (Twilio, etc.) the way the
// webhook plugin calls an arbitrary endpoint.
type SMSPlugin struct {
	logger *zap.Logger
}

func NewSMSPlugin(config map[string]any, logger *zap.Logger) (Plugin, error) {
	return &SMSPlugin{logger: logger}, nil
}

func (p *SMSPlugin) Notify(ctx context.Context, event Event, recipient, message string) error {
	if recipient == "" {
		return fmt.Errorf("sms: recipient number is empty")
	}
	p.logger.Info("sms dispatched (stub)", zap.String("to", recipient))
	return nil
}

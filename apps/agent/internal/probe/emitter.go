// Package probe wraps probetype.Instance lifecycle and gives each running
// instance an Emit path back to the relay's POST /events (spec.md §4.E).
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wireEvent mirrors apps/master/internal/service/dispatch.Event's shape —
// the agent constructs events in the same envelope the Master ultimately
// consumes, so the relay's forwarding hop never needs to touch the body.
type wireEvent struct {
	V       int            `json:"v"`
	UUID    string         `json:"uuid"`
	Type    string         `json:"type"`
	User    string         `json:"user"`
	Monitor string         `json:"monitor"`
	Time    int64          `json:"time"`
	Clear   bool           `json:"clear,omitempty"`
	Data    map[string]any `json:"data"`
	Probe   probeRef       `json:"probe"`
}

type probeRef struct {
	User    string `json:"user"`
	Monitor string `json:"monitor"`
	Name    string `json:"name"`
	Type    string `json:"type"`
}

// Emitter POSTs probe-fired events to the local relay's /events endpoint.
type Emitter struct {
	relayURL string
	http     *http.Client
	logger   *zap.Logger
}

func NewEmitter(relayURL string, logger *zap.Logger) *Emitter {
	return &Emitter{relayURL: relayURL, http: &http.Client{Timeout: 5 * time.Second}, logger: logger}
}

// Emit is called by a running Instance (through emitContext) whenever its
// check fires. Delivery to the relay is fire-and-forget from the probe
// instance's point of view — the relay owns retry/backoff from here on.
func (e *Emitter) Emit(user, monitor, name, probeType, eventType string, clear bool, data map[string]any) {
	body, err := json.Marshal(wireEvent{
		V: 1, UUID: uuid.NewString(), Type: eventType,
		User: user, Monitor: monitor, Time: time.Now().UnixMilli(), Clear: clear, Data: data,
		Probe: probeRef{User: user, Monitor: monitor, Name: name, Type: probeType},
	})
	if err != nil {
		e.logger.Error("failed to marshal probe event", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, e.relayURL+"/events", bytes.NewReader(body))
	if err != nil {
		e.logger.Error("failed to build event request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		e.logger.Warn("event post to relay failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}

// Package forward implements the relay's outbound hop: accept events POSTed
// by local agents and forward them to the Master's POST /events, retrying
// with backoff and dropping (with a counter increment) once the retry
// budget is exhausted (spec.md §4.E/§7 — best-effort, bounded retry).
package forward

import (
	"bytes"
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/retry"
)

// Forwarder relays one event body at a time to the Master, independent of
// any particular agent transport — the relay's agent-facing ingest
// endpoint decodes the agent's POST and calls Forward with the raw body.
type Forwarder struct {
	masterURL string
	http      *http.Client
	logger    *zap.Logger
	dropped   int64
}

func NewForwarder(masterURL string, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		masterURL: masterURL,
		http:      &http.Client{},
		logger:    logger,
	}
}

// Forward POSTs body to the Master's event ingest endpoint under
// retry.DefaultForwardPolicy() (exponential backoff capped at a few
// minutes). On exhaustion the event is dropped and the drop counter
// incremented — spec.md explicitly allows this; there is no guaranteed
// delivery in this core.
func (f *Forwarder) Forward(ctx context.Context, body []byte) {
	err := retry.Do(ctx, retry.DefaultForwardPolicy(), func() error {
		return f.post(ctx, body)
	})
	if err != nil {
		f.dropped++
		f.logger.Error("event forward exhausted retries, dropping",
			zap.Error(err), zap.Int64("dropped_total", f.dropped))
	}
}

func (f *Forwarder) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.masterURL+"/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &forwardError{status: resp.StatusCode}
	}
	// 4xx is not retryable — the event is malformed or stale; log and treat
	// as delivered so it does not retry forever against a request that will
	// never succeed.
	if resp.StatusCode >= 400 {
		f.logger.Warn("event rejected by master, not retrying", zap.Int("status", resp.StatusCode))
	}
	return nil
}

type forwardError struct{ status int }

func (e *forwardError) Error() string {
	return http.StatusText(e.status)
}

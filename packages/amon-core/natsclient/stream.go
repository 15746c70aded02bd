package natsclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// StreamEvents is the durable stream carrying every inbound probe/fake
	// event (spec.md §4.D's /events ingest).
	StreamEvents = "AMON_EVENTS"
	// SubjectEvents captures every monitor-scoped event subject.
	SubjectEvents = "AMON_EVENTS.>"

	// maxDuplicateWindow bounds how long JetStream itself remembers a
	// Msg-Id for deduplication. That tracking lives in the stream's
	// in-memory dedup structure, unlike the Postgres ledger apps/master's
	// reaper sweeps, so it is kept well short of a caller's configured
	// application-level dedup window rather than matched to it directly.
	maxDuplicateWindow = 2 * time.Hour
)

var streamSubjects = []string{SubjectEvents}

// EventSubject returns the subject an event for (user, monitor) publishes
// on — dispatch consumers can filter on a per-monitor or per-account
// wildcard if they ever need to (none do today; the dispatcher consumes
// the whole stream).
func EventSubject(user, monitor string) string {
	return fmt.Sprintf("%s.%s.%s", StreamEvents, user, monitor)
}

// ProvisionStreams idempotently ensures the AMON_EVENTS JetStream stream
// exists with the correct subject filter and duplicate-tracking window.
// dedupWindow is normally the caller's configured event-dedup window
// (coreconfig.Master.EventDedupWindow); it is clamped to
// maxDuplicateWindow since JetStream holds duplicate tracking in memory
// for the life of the window, unlike the Postgres ledger.
func (c *Client) ProvisionStreams(dedupWindow time.Duration) error {
	window := dedupWindow
	if window <= 0 || window > maxDuplicateWindow {
		window = maxDuplicateWindow
	}

	cfg := &nats.StreamConfig{
		Name:       StreamEvents,
		Subjects:   streamSubjects,
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		Duplicates: window,
	}

	info, err := c.JS.StreamInfo(StreamEvents)
	if err == nil {
		if info.Config.Duplicates != window {
			if _, err := c.JS.UpdateStream(cfg); err != nil {
				return fmt.Errorf("update stream: %w", err)
			}
			c.Log.Info("NATS stream duplicate window updated",
				zap.String("stream", StreamEvents), zap.Duration("window", window))
			return nil
		}
		c.Log.Info("NATS stream already exists", zap.String("stream", StreamEvents))
		return nil
	}

	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info: %w", err)
	}

	if _, err := c.JS.AddStream(cfg); err != nil {
		return fmt.Errorf("create stream: %w", err)
	}

	c.Log.Info("NATS stream provisioned",
		zap.String("stream", StreamEvents),
		zap.Strings("subjects", streamSubjects),
		zap.Duration("duplicate_window", window),
	)
	return nil
}

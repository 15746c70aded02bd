// Package sync implements the relay's poll loop (spec.md §4.E): per target,
// pull the current probe manifest from the Master and cache it to local
// disk, content-addressed so agents can cheaply notice when it changes.
package sync

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/config"
	"github.com/arc-self/amon/packages/amon-core/retry"
)

// Poller periodically queries the Master for each configured target's
// manifest and rewrites the on-disk cache when the content hash changes.
type Poller struct {
	masterURL string
	dataDir   string
	targets   []config.Target
	interval  time.Duration
	http      *http.Client
	logger    *zap.Logger
}

// NewPoller constructs a Poller; interval defaults to 30s (spec.md §4.E)
// if zero or negative.
func NewPoller(masterURL, dataDir string, targets []config.Target, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		masterURL: masterURL,
		dataDir:   dataDir,
		targets:   targets,
		interval:  interval,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled, ticking every p.interval. A tick that
// overlaps the next scheduled one is skipped rather than piled up, matching
// spec.md §5's "overlapping ticks skip the next" rule — time.Ticker already
// drops ticks nobody received, so a single-goroutine poll body is enough.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("relay poller started", zap.Duration("interval", p.interval), zap.Int("targets", len(p.targets)))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("relay poller stopping")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll processes every target independently so one target's failure never
// blocks another's — the same per-job isolation a poll/processJob split
// gives any multi-target poll loop.
func (p *Poller) poll(ctx context.Context) {
	for _, t := range p.targets {
		if err := p.processTarget(ctx, t); err != nil {
			p.logger.Error("manifest poll failed",
				zap.String("target_type", t.Type),
				zap.String("target_uuid", t.UUID),
				zap.Error(err),
			)
		}
	}
}

// processTarget fetches one target's manifest from the Master under a
// capped exponential backoff, and rewrites the on-disk cache only when the
// body's content hash differs from what's already there.
func (p *Poller) processTarget(ctx context.Context, t config.Target) error {
	// Bound this target's retries to well inside one poll interval, so a
	// persistently failing target gives up and lets the next tick (and
	// the other targets in this tick) proceed rather than retrying
	// forever per DefaultPollPolicy's unbounded MaxElapsedTime.
	attemptCtx, cancel := context.WithTimeout(ctx, p.interval/2)
	defer cancel()

	var body []byte
	err := retry.Do(attemptCtx, retry.DefaultPollPolicy(), func() error {
		b, err := p.fetchManifest(ctx, t)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return err
	}

	newHash := ContentMD5(body)
	if newHash == readCachedHash(p.dataDir, t.Type, t.UUID) {
		return nil
	}

	if err := writeManifest(p.dataDir, t.Type, t.UUID, body); err != nil {
		return err
	}
	p.logger.Info("manifest updated",
		zap.String("target_type", t.Type),
		zap.String("target_uuid", t.UUID),
		zap.String("content_md5", newHash),
	)
	return nil
}

func (p *Poller) fetchManifest(ctx context.Context, t config.Target) ([]byte, error) {
	url := p.masterURL + "/agentprobes?" + t.Type + "=" + t.UUID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &httpStatusError{status: resp.StatusCode}
	}
	return body, nil
}

type httpStatusError struct{ status int }

func (e *httpStatusError) Error() string {
	return http.StatusText(e.status)
}

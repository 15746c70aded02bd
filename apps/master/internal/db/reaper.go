package db

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reaper periodically deletes event_dedup_ledger rows older than window,
// keeping the table bounded by age rather than relying on the dedup
// window's logical expiry alone.
type Reaper struct {
	cron   *cron.Cron
	q      Querier
	window time.Duration
	logger *zap.Logger
}

// NewReaper builds a Reaper that sweeps every sweepSpec (a standard cron
// expression, e.g. "@every 5m"), removing rows seen more than window ago.
func NewReaper(q Querier, window time.Duration, sweepSpec string, logger *zap.Logger) (*Reaper, error) {
	r := &Reaper{
		cron:   cron.New(),
		q:      q,
		window: window,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(sweepSpec, r.sweep); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the periodic sweep. Call Stop to drain it.
func (r *Reaper) Start() {
	r.cron.Start()
	r.logger.Info("event dedup ledger reaper started", zap.Duration("window", r.window))
}

// Stop waits for any in-flight sweep to finish before returning.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("event dedup ledger reaper stopped")
}

func (r *Reaper) sweep() {
	cutoff := time.Now().UTC().Add(-r.window)
	removed, err := r.q.DeleteExpiredEvents(context.Background(), cutoff)
	if err != nil {
		r.logger.Error("dedup ledger sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		r.logger.Info("dedup ledger swept", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	}
}

// Package retry wraps github.com/cenkalti/backoff/v4 for the bounded
// exponential-backoff retries used in two places: the relay's
// probe-manifest poll loop (failures logged and retried with backoff)
// and agent/relay event forwarding (bounded retry — exponential backoff,
// cap at a few minutes, drop with a counter increment after the cap).
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures a capped exponential backoff.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultPollPolicy matches the relay's "retried w/ backoff" requirement
// without a fixed cap — the poll loop simply tries again on the next tick
// regardless, so MaxElapsedTime is 0 (no deadline) and the caller's own
// ticker governs retry cadence.
func DefaultPollPolicy() Policy {
	return Policy{InitialInterval: 500 * time.Millisecond, MaxInterval: 30 * time.Second}
}

// DefaultForwardPolicy matches the "cap at few minutes, drop+counter
// after cap" requirement for event forwarding.
func DefaultForwardPolicy() Policy {
	return Policy{InitialInterval: 1 * time.Second, MaxInterval: 1 * time.Minute, MaxElapsedTime: 5 * time.Minute}
}

func (p Policy) build() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return b
}

// Do retries fn until it succeeds, the policy's elapsed-time cap is
// exceeded, or ctx is cancelled. Returns the last error when exhausted.
func Do(ctx context.Context, p Policy, fn func() error) error {
	return backoff.Retry(fn, backoff.WithContext(p.build(), ctx))
}

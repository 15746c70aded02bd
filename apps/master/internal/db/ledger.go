package db

import (
	"context"
	"time"
)

// EventLedger adapts Querier to the dispatch.Ledger interface without
// giving the dispatch package a dependency on pgx directly.
type EventLedger struct {
	q Querier
}

func NewEventLedger(q Querier) *EventLedger {
	return &EventLedger{q: q}
}

func (l *EventLedger) SeenRecently(ctx context.Context, uuid string) (bool, error) {
	inserted, err := l.q.InsertEventIfAbsent(ctx, uuid, "", time.Now().UTC())
	if err != nil {
		return false, err
	}
	return !inserted, nil
}

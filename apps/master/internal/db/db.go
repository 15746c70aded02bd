// Package db is Master's pgx-backed relational store: the event-dedup
// ledger backing POST /events idempotency (spec.md §6) and a
// mutation audit log. Amon's primary store is the directory
// (component A); these two tables are the ambient durability/audit
// concerns the directory can't give us. Hand-authored in a small
// Querier interface + pgxpool shape, since no code-generation tool
// covers this schema.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the interface service code depends on, so tests can supply
// an in-memory fake without a live Postgres instance.
type Querier interface {
	// InsertEventIfAbsent records uuid in the dedup ledger. Returns
	// inserted=false if uuid was already present, implementing the
	// idempotency window spec.md §4.E requires for POST /events.
	InsertEventIfAbsent(ctx context.Context, uuid string, eventType string, seenAt time.Time) (inserted bool, err error)

	// InsertAuditEntry records one mutation (PUT/DELETE) against an
	// object-model entity.
	InsertAuditEntry(ctx context.Context, entry AuditEntry) error

	// DeleteExpiredEvents removes dedup ledger rows seen before cutoff,
	// returning the number of rows removed. Backs the reaper's periodic
	// sweep keeping event_dedup_ledger bounded by age, not just by the
	// dedup window's logical expiry.
	DeleteExpiredEvents(ctx context.Context, cutoff time.Time) (removed int64, err error)
}

// AuditEntry is one row of the audit_log table.
type AuditEntry struct {
	Account   string
	Action    string // "put" | "delete"
	EntityDN  string
	Operator  bool
	Timestamp time.Time
}

type pgQuerier struct {
	pool *pgxpool.Pool
}

// New wraps pool in the Querier interface.
func New(pool *pgxpool.Pool) Querier {
	return &pgQuerier{pool: pool}
}

func (q *pgQuerier) InsertEventIfAbsent(ctx context.Context, uuid string, eventType string, seenAt time.Time) (bool, error) {
	tag, err := q.pool.Exec(ctx, `
		INSERT INTO event_dedup_ledger (event_uuid, event_type, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_uuid) DO NOTHING
	`, uuid, eventType, seenAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (q *pgQuerier) InsertAuditEntry(ctx context.Context, entry AuditEntry) error {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO audit_log (account, action, entity_dn, operator, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.Account, entry.Action, entry.EntityDN, entry.Operator, entry.Timestamp)
	return err
}

func (q *pgQuerier) DeleteExpiredEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.pool.Exec(ctx, `DELETE FROM event_dedup_ledger WHERE seen_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Schema is applied once at startup inline, the way a small worker would
// without a dedicated migration tool.
const Schema = `
CREATE TABLE IF NOT EXISTS event_dedup_ledger (
	event_uuid TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	seen_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          BIGSERIAL PRIMARY KEY,
	account     TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_dn   TEXT NOT NULL,
	operator    BOOLEAN NOT NULL DEFAULT false,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS event_dedup_ledger_seen_at_idx ON event_dedup_ledger (seen_at);
`

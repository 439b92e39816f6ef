// Package repo persists consumed payment references
package repo

import (
	"context"
	"math"
	"time"

	"paygate/internal/modkit/repokit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/store"
	"paygate/internal/services/replay/domain"
)

// Repo defines the replay repository contract
type Repo interface {
	// Insert adds rec unless its reference exists; inserted is true for exactly one caller per reference
	Insert(ctx context.Context, rec domain.Record) (inserted bool, err error)

	// Get returns the stored record; ok is false when absent
	Get(ctx context.Context, reference string) (rec domain.Record, ok bool, err error)

	// DeleteBefore removes records recorded strictly before cutoff
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// EnsureSchema creates the table and index when missing
	EnsureSchema(ctx context.Context) error
}

type (
	// PG is a Postgres replay repository
	PG struct{}
	// SQLite is an embedded replay repository
	SQLite  struct{}
	pgQ     struct{ q repokit.Queryer }
	sqliteQ struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres replay repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// NewSQLite constructs an embedded replay repository binder
func NewSQLite() repokit.Binder[Repo] { return SQLite{} }

// For returns the binder matching d
func For(d store.Dialect) repokit.Binder[Repo] {
	return repokit.Dialected[Repo](d, NewPG(), NewSQLite())
}

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &pgQ{q: q} }

// Bind binds a Queryer to a SQLite implementation of Repo
func (SQLite) Bind(q repokit.Queryer) Repo { return &sqliteQ{q: q} }

func amountArg(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, perr.WithField(perr.InvalidArgf("amount exceeds storable range"), "amount")
	}
	return int64(v), nil
}

func amountOut(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// postgres

func (r *pgQ) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS payment_replays (
			reference   TEXT PRIMARY KEY,
			amount      BIGINT NOT NULL CHECK (amount >= 0),
			recipient   TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	const idx = `CREATE INDEX IF NOT EXISTS payment_replays_recorded_at_idx ON payment_replays (recorded_at)`
	if _, err := store.Exec(ctx, r.q, ddl); err != nil {
		return perr.FromPostgres(err, "create payment_replays")
	}
	_, err := store.Exec(ctx, r.q, idx)
	return perr.FromPostgres(err, "index payment_replays")
}

func (r *pgQ) Insert(ctx context.Context, rec domain.Record) (bool, error) {
	const sql = `
		INSERT INTO payment_replays (reference, amount, recipient, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reference) DO NOTHING
	`
	amt, err := amountArg(rec.Amount)
	if err != nil {
		return false, err
	}
	tag, err := r.q.Exec(ctx, sql, rec.Reference, amt, rec.Recipient, rec.RecordedAt.UTC())
	if err != nil {
		return false, perr.FromPostgres(err, "insert payment_replays")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgQ) Get(ctx context.Context, reference string) (domain.Record, bool, error) {
	const sql = `
		SELECT reference, amount, recipient, recorded_at
		FROM payment_replays
		WHERE reference = $1
	`
	rec, err := store.One(ctx, r.q, func(row store.Row) (domain.Record, error) {
		var (
			out domain.Record
			amt int64
		)
		err := row.Scan(&out.Reference, &amt, &out.Recipient, &out.RecordedAt)
		out.Amount = amountOut(amt)
		return out, err
	}, sql, reference)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, perr.FromPostgres(err, "select payment_replays")
	}
	return rec, true, nil
}

func (r *pgQ) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const sql = `DELETE FROM payment_replays WHERE recorded_at < $1`
	tag, err := r.q.Exec(ctx, sql, cutoff.UTC())
	if err != nil {
		return 0, perr.FromPostgres(err, "sweep payment_replays")
	}
	return tag.RowsAffected(), nil
}

// sqlite stores recorded_at as unix milliseconds

func (r *sqliteQ) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS payment_replays (
			reference   TEXT PRIMARY KEY,
			amount      INTEGER NOT NULL CHECK (amount >= 0),
			recipient   TEXT NOT NULL,
			recorded_at INTEGER NOT NULL
		)
	`
	const idx = `CREATE INDEX IF NOT EXISTS payment_replays_recorded_at_idx ON payment_replays (recorded_at)`
	if _, err := store.Exec(ctx, r.q, ddl); err != nil {
		return perr.FromSQLite(err, "create payment_replays")
	}
	_, err := store.Exec(ctx, r.q, idx)
	return perr.FromSQLite(err, "index payment_replays")
}

func (r *sqliteQ) Insert(ctx context.Context, rec domain.Record) (bool, error) {
	const sql = `
		INSERT INTO payment_replays (reference, amount, recipient, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (reference) DO NOTHING
	`
	amt, err := amountArg(rec.Amount)
	if err != nil {
		return false, err
	}
	tag, err := r.q.Exec(ctx, sql, rec.Reference, amt, rec.Recipient, rec.RecordedAt.UnixMilli())
	if err != nil {
		return false, perr.FromSQLite(err, "insert payment_replays")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *sqliteQ) Get(ctx context.Context, reference string) (domain.Record, bool, error) {
	const sql = `
		SELECT reference, amount, recipient, recorded_at
		FROM payment_replays
		WHERE reference = ?
	`
	rec, err := store.One(ctx, r.q, func(row store.Row) (domain.Record, error) {
		var (
			out     domain.Record
			amt, ms int64
		)
		err := row.Scan(&out.Reference, &amt, &out.Recipient, &ms)
		out.Amount = amountOut(amt)
		out.RecordedAt = time.UnixMilli(ms).UTC()
		return out, err
	}, sql, reference)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, perr.FromSQLite(err, "select payment_replays")
	}
	return rec, true, nil
}

func (r *sqliteQ) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const sql = `DELETE FROM payment_replays WHERE recorded_at < ?`
	tag, err := r.q.Exec(ctx, sql, cutoff.UnixMilli())
	if err != nil {
		return 0, perr.FromSQLite(err, "sweep payment_replays")
	}
	return tag.RowsAffected(), nil
}

// Package repo writes decoded ledger accounts into the entities read model
package repo

import (
	"context"
	"math"
	"time"

	"paygate/internal/core/layout"
	"paygate/internal/modkit/repokit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/store"
)

// Repo defines the read model write contract
// every write is an upsert keyed by id, so replays of the same snapshot are harmless
type Repo interface {
	EnsureSchema(ctx context.Context) error
	UpsertEntity(ctx context.Context, address string, e layout.EntityIdentity, at time.Time) error
	UpsertReputation(ctx context.Context, address string, r layout.EntityReputation, at time.Time) error
	UpsertProtocol(ctx context.Context, address string, p layout.ProtocolState, at time.Time) error
}

type (
	// PG is a Postgres read model repository
	PG struct{}
	// SQLite is an embedded read model repository
	SQLite  struct{}
	queries struct {
		q repokit.Queryer
		d store.Dialect
	}
)

// NewPG constructs a Postgres binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// NewSQLite constructs an embedded binder
func NewSQLite() repokit.Binder[Repo] { return SQLite{} }

// For returns the binder matching d
func For(d store.Dialect) repokit.Binder[Repo] {
	return repokit.Dialected[Repo](d, NewPG(), NewSQLite())
}

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q, d: store.DialectPG} }

// Bind binds a Queryer to a SQLite implementation of Repo
func (SQLite) Bind(q repokit.Queryer) Repo { return &queries{q: q, d: store.DialectSQLite} }

// the DDL is portable; BIGINT and BOOLEAN map onto sqlite affinities
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		id             BIGINT PRIMARY KEY,
		address        TEXT NOT NULL,
		owner          TEXT NOT NULL,
		payout_address TEXT NOT NULL,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL,
		uri            TEXT NOT NULL,
		active         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     BIGINT NOT NULL,
		updated_at     BIGINT NOT NULL,
		indexed_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS entities_active_idx ON entities (active, id)`,
	`CREATE TABLE IF NOT EXISTS entity_reputations (
		id            BIGINT PRIMARY KEY,
		address       TEXT NOT NULL,
		total_ratings BIGINT NOT NULL,
		rating_sum    BIGINT NOT NULL,
		total_volume  BIGINT NOT NULL,
		unique_raters BIGINT NOT NULL,
		stars_1       BIGINT NOT NULL,
		stars_2       BIGINT NOT NULL,
		stars_3       BIGINT NOT NULL,
		stars_4       BIGINT NOT NULL,
		stars_5       BIGINT NOT NULL,
		indexed_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS protocol_state (
		address      TEXT PRIMARY KEY,
		authority    TEXT NOT NULL,
		entity_count BIGINT NOT NULL,
		fee_bps      INTEGER NOT NULL,
		indexed_at   BIGINT NOT NULL
	)`,
}

func (r *queries) wrap(err error, msg string) error {
	if r.d == store.DialectSQLite {
		return perr.FromSQLite(err, msg)
	}
	return perr.FromPostgres(err, msg)
}

func (r *queries) EnsureSchema(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := store.Exec(ctx, r.q, stmt); err != nil {
			return r.wrap(err, "ensure read model schema")
		}
	}
	return nil
}

func (r *queries) UpsertEntity(ctx context.Context, address string, e layout.EntityIdentity, at time.Time) error {
	const sql = `
		INSERT INTO entities (id, address, owner, payout_address, name, description, uri, active, created_at, updated_at, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			address        = excluded.address,
			owner          = excluded.owner,
			payout_address = excluded.payout_address,
			name           = excluded.name,
			description    = excluded.description,
			uri            = excluded.uri,
			active         = excluded.active,
			created_at     = excluded.created_at,
			updated_at     = excluded.updated_at,
			indexed_at     = excluded.indexed_at
	`
	id, err := column("id", e.ID)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, r.d.Rebind(sql),
		id, address, e.Owner, e.PayoutAddress, e.Name, e.Description, e.URI, e.Active,
		e.CreatedAt, e.UpdatedAt, at.UnixMilli())
	return r.wrap(err, "upsert entity")
}

func (r *queries) UpsertReputation(ctx context.Context, address string, rep layout.EntityReputation, at time.Time) error {
	const sql = `
		INSERT INTO entity_reputations (id, address, total_ratings, rating_sum, total_volume, unique_raters,
			stars_1, stars_2, stars_3, stars_4, stars_5, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			address       = excluded.address,
			total_ratings = excluded.total_ratings,
			rating_sum    = excluded.rating_sum,
			total_volume  = excluded.total_volume,
			unique_raters = excluded.unique_raters,
			stars_1       = excluded.stars_1,
			stars_2       = excluded.stars_2,
			stars_3       = excluded.stars_3,
			stars_4       = excluded.stars_4,
			stars_5       = excluded.stars_5,
			indexed_at    = excluded.indexed_at
	`
	cols := append([]uint64{rep.ID, rep.TotalRatings, rep.RatingSum, rep.TotalVolume, rep.UniqueRaters},
		rep.RatingDistribution[:]...)
	args := make([]any, 0, len(cols)+2)
	for i, v := range cols {
		n, err := column("reputation", v)
		if err != nil {
			return err
		}
		args = append(args, n)
		if i == 0 {
			args = append(args, address)
		}
	}
	args = append(args, at.UnixMilli())

	_, err := r.q.Exec(ctx, r.d.Rebind(sql), args...)
	return r.wrap(err, "upsert reputation")
}

func (r *queries) UpsertProtocol(ctx context.Context, address string, p layout.ProtocolState, at time.Time) error {
	const sql = `
		INSERT INTO protocol_state (address, authority, entity_count, fee_bps, indexed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			authority    = excluded.authority,
			entity_count = excluded.entity_count,
			fee_bps      = excluded.fee_bps,
			indexed_at   = excluded.indexed_at
	`
	count, err := column("entity_count", p.EntityCount)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, r.d.Rebind(sql), address, p.Authority, count, int64(p.FeeBps), at.UnixMilli())
	return r.wrap(err, "upsert protocol state")
}

// column narrows a ledger u64 into a signed BIGINT column
func column(name string, v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, perr.WithField(perr.InvalidArgf("%s exceeds storable range", name), name)
	}
	return int64(v), nil
}

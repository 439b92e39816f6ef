// Package repo reads the entities read model written by the indexer
package repo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"paygate/internal/modkit/repokit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/store"
)

// Repo is the minimal read surface for entities
type Repo interface {
	List(ctx context.Context, active *bool, limit, offset int) ([]EntityRow, error)
	Count(ctx context.Context, active *bool) (int64, error)
	Get(ctx context.Context, id int64) (EntityRow, error)
	Reputation(ctx context.Context, id int64) (ReputationRow, error)
}

// EntityRow represents one row of entities
type EntityRow struct {
	ID            int64
	Address       string
	Owner         string
	PayoutAddress string
	Name          string
	Description   string
	URI           string
	Active        bool
	CreatedAt     int64
	UpdatedAt     int64
	IndexedAt     time.Time
}

// ReputationRow represents one row of entity_reputations
type ReputationRow struct {
	ID           int64
	Address      string
	TotalRatings int64
	RatingSum    int64
	TotalVolume  int64
	UniqueRaters int64
	Stars        [5]int64
	IndexedAt    time.Time
}

type (
	// PG is a binder for the Postgres read model
	PG struct{}
	// SQLite is a binder for the embedded read model
	SQLite struct{}
	// queries implements the Repo interface
	queries struct {
		q repokit.Queryer
		d store.Dialect
	}
)

// NewPG returns a binder for Postgres
func NewPG() repokit.Binder[Repo] { return PG{} }

// NewSQLite returns a binder for the embedded store
func NewSQLite() repokit.Binder[Repo] { return SQLite{} }

// For returns the binder matching d
func For(d store.Dialect) repokit.Binder[Repo] {
	return repokit.Dialected[Repo](d, NewPG(), NewSQLite())
}

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q, d: store.DialectPG} }

// Bind wires a Queryer to the repo
func (SQLite) Bind(q repokit.Queryer) Repo { return &queries{q: q, d: store.DialectSQLite} }

const entityCols = `id, address, owner, payout_address, name, description, uri, active, created_at, updated_at, indexed_at`

func scanEntity(row store.Row) (EntityRow, error) {
	var (
		e       EntityRow
		indexed int64
	)
	err := row.Scan(&e.ID, &e.Address, &e.Owner, &e.PayoutAddress, &e.Name, &e.Description, &e.URI,
		&e.Active, &e.CreatedAt, &e.UpdatedAt, &indexed)
	e.IndexedAt = time.UnixMilli(indexed).UTC()
	return e, err
}

// where renders the optional active filter and its args starting at $1
func where(active *bool) (string, []any) {
	if active == nil {
		return "", nil
	}
	return " WHERE active = $1", []any{*active}
}

func (r *queries) wrap(err error, msg string) error {
	if r.d == store.DialectSQLite {
		return perr.FromSQLite(err, msg)
	}
	return perr.FromPostgres(err, msg)
}

func (r *queries) List(ctx context.Context, active *bool, limit, offset int) ([]EntityRow, error) {
	filter, args := where(active)
	n := len(args)
	sql := `SELECT ` + entityCols + ` FROM entities` + filter +
		` ORDER BY id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := store.Many(ctx, r.q, scanEntity, r.d.Rebind(sql), args...)
	if err != nil {
		return nil, r.wrap(err, "list entities")
	}
	return rows, nil
}

func (r *queries) Count(ctx context.Context, active *bool) (int64, error) {
	filter, args := where(active)
	n, err := store.Scalar[int64](ctx, r.q, r.d.Rebind(`SELECT COUNT(*) FROM entities`+filter), args...)
	if err != nil {
		return 0, r.wrap(err, "count entities")
	}
	return n, nil
}

func (r *queries) Get(ctx context.Context, id int64) (EntityRow, error) {
	sql := `SELECT ` + entityCols + ` FROM entities WHERE id = $1`
	e, err := store.One(ctx, r.q, scanEntity, r.d.Rebind(sql), id)
	if err != nil {
		return EntityRow{}, r.notFound(err, "entity", id)
	}
	return e, nil
}

func (r *queries) Reputation(ctx context.Context, id int64) (ReputationRow, error) {
	const sql = `
		SELECT id, address, total_ratings, rating_sum, total_volume, unique_raters,
			stars_1, stars_2, stars_3, stars_4, stars_5, indexed_at
		FROM entity_reputations
		WHERE id = $1
	`
	scan := func(row store.Row) (ReputationRow, error) {
		var (
			x       ReputationRow
			indexed int64
		)
		err := row.Scan(&x.ID, &x.Address, &x.TotalRatings, &x.RatingSum, &x.TotalVolume, &x.UniqueRaters,
			&x.Stars[0], &x.Stars[1], &x.Stars[2], &x.Stars[3], &x.Stars[4], &indexed)
		x.IndexedAt = time.UnixMilli(indexed).UTC()
		return x, err
	}
	rep, err := store.One(ctx, r.q, scan, r.d.Rebind(sql), id)
	if err != nil {
		return ReputationRow{}, r.notFound(err, "reputation", id)
	}
	return rep, nil
}

func (r *queries) notFound(err error, what string, id int64) error {
	if errors.Is(err, perr.ErrNotFound) {
		return perr.WithField(perr.NotFoundf("%s %d not indexed", what, id), "id")
	}
	return r.wrap(err, "get "+what)
}

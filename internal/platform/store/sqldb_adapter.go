package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"paygate/internal/platform/store/pg"
	"paygate/internal/platform/store/sqlite"
)

// sqlConn is what *sql.DB and *sql.Tx have in common
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlQuerier runs statements on a database/sql handle, the embedded sqlite backend
type sqlQuerier struct {
	c     sqlConn
	trace traceFunc
}

func (q sqlQuerier) Exec(ctx context.Context, s string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := q.c.ExecContext(ctx, s, args...)
	q.trace(ctx, s, args, start, err)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return sqlTag(n), nil
}

func (q sqlQuerier) Query(ctx context.Context, s string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := q.c.QueryContext(ctx, s, args...)
	q.trace(ctx, s, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlRows{rs}, nil
}

func (q sqlQuerier) QueryRow(ctx context.Context, s string, args ...any) Row {
	start := time.Now()
	r := q.c.QueryRowContext(ctx, s, args...)
	return row{r: r, after: func(err error) { q.trace(ctx, s, args, start, err) }}
}

// sqlAdapter is the sqlite TxRunner; it shares the pg tracer so both backends log alike
type sqlAdapter struct {
	sqlQuerier
	db *sqlite.DB
}

func newSQLAdapter(db *sqlite.DB, tracer pg.QueryTracer, slowMs int) *sqlAdapter {
	return &sqlAdapter{sqlQuerier: sqlQuerier{c: db.SQL, trace: newTrace(tracer, slowMs)}, db: db}
}

func (a *sqlAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.db.SQL.PingContext(ctx)
}

func (a *sqlAdapter) Close() error { return a.db.Close() }

func (a *sqlAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlQuerier{c: tx, trace: a.trace}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }

func (r sqlRows) Columns() []string {
	cols, _ := r.Rows.Columns()
	return cols
}

type sqlTag int64

func (t sqlTag) String() string      { return fmt.Sprintf("ROWS %d", int64(t)) }
func (t sqlTag) RowsAffected() int64 { return int64(t) }

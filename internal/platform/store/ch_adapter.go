package store

import (
	"context"
	"errors"

	"paygate/internal/platform/store/ch"
)

// chConn is the subset of *ch.CH the seam needs
type chConn interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Close() error
}

// chAdapter exposes a chConn as Clickhouse; only Query needs converting
type chAdapter struct{ chConn }

// chRows drops the error from Close to match Rows
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }

var _ Clickhouse = chAdapter{}

func newCHAdapter(c chConn) Clickhouse { return chAdapter{c} }

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.chConn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

// Ping runs a one row SELECT so readiness covers the query path and not only the socket
func (a chAdapter) Ping(ctx context.Context) error {
	if a.chConn == nil {
		return errors.New("store: clickhouse not connected")
	}
	rows, err := a.Query(ctx, "SELECT toInt32(1)")
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return errors.Join(errors.New("store: clickhouse ping returned no rows"), rows.Err())
	}
	var one int32
	if err := rows.Scan(&one); err != nil {
		return err
	}
	return rows.Err()
}

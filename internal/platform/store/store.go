// Package store opens the backends a process is configured for and hides the drivers behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/platform/logger"
)

// Store holds the opened backends; any of them may be nil
type Store struct {
	// Log is handed to the query tracers; zero discards
	Log logger.Logger

	// PG is set when SERVICE_PGSQL_ENABLED
	PG TxRunner

	// Lite is the embedded sqlite seam, nil when disabled
	// single node deployments use it in place of PG
	Lite TxRunner

	// CH backs the grant log when SERVICE_CLICKHOUSE_ENABLED
	CH Clickhouse
}

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set; callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier runs sql with $n placeholders; adapters rebind for their driver
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner commits when fn returns nil and rolls back otherwise
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam: batch inserts plus ad hoc statements
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger reports whether a backend answers
type Pinger interface{ Ping(context.Context) error }

// Open connects every backend cfg enables; the rest stay nil
// a failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	steps := []struct {
		on   bool
		open func() error
	}{
		{cfg.PG.Enabled, func() (err error) { s.PG, err = openPG(ctx, cfg, s); return }},
		{cfg.SQLite.Enabled, func() (err error) { s.Lite, err = openSQLite(ctx, cfg, s); return }},
		{cfg.CH.Enabled, func() (err error) { s.CH, err = openCH(ctx, cfg, s); return }},
	}
	for _, st := range steps {
		if !st.on {
			continue
		}
		if err := st.open(); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

// SQL is the relational backend repos run on: postgres when configured, else sqlite
func (s *Store) SQL() TxRunner {
	switch {
	case s == nil:
		return nil
	case s.PG != nil:
		return s.PG
	}
	return s.Lite
}

// Guard pings every open backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, seam := range s.seams() {
		if p, ok := seam.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close shuts every open backend and joins the failures
func (s *Store) Close(context.Context) error {
	var errs []error
	for _, seam := range s.seams() {
		if c, ok := seam.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// seams lists the open backends by name
func (s *Store) seams() map[string]any {
	out := map[string]any{}
	if s.PG != nil {
		out["pg"] = s.PG
	}
	if s.Lite != nil {
		out["sqlite"] = s.Lite
	}
	if s.CH != nil {
		out["clickhouse"] = s.CH
	}
	return out
}

// Dialect names the sql flavour behind SQL
type Dialect string

const (
	// DialectNone means no sql backend is configured
	DialectNone Dialect = ""
	// DialectPG is postgres with $n placeholders
	DialectPG Dialect = "pg"
	// DialectSQLite is embedded sqlite with ? placeholders
	DialectSQLite Dialect = "sqlite"
)

// Dialect reports which backend SQL returns
func (s *Store) Dialect() Dialect {
	switch {
	case s == nil:
		return DialectNone
	case s.PG != nil:
		return DialectPG
	case s.Lite != nil:
		return DialectSQLite
	}
	return DialectNone
}

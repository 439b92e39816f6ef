package store

import (
	"context"
	"fmt"
	"time"

	chx "paygate/internal/platform/store/ch"
	"paygate/internal/platform/store/pg"
	"paygate/internal/platform/store/sqlite"
)

const (
	pgFirstBackoff = 150 * time.Millisecond
	pgMaxBackoff   = 2 * time.Second
)

// openPG builds the pool then pings until postgres answers, doubling the wait up to pgMaxBackoff
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var opts []pg.Option
	if cfg.PG.LogSQL {
		opts = append(opts, pg.WithTracer(pg.Tracer(s.Log)))
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, opts...)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	var lastErr error
	wait := pgFirstBackoff
	for i := range attempts {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Pool.Ping(pctx)
		cancel()
		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Dur("retry_in", wait).Msg("postgres not ready")

		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, pgMaxBackoff)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

// openSQLite opens the embedded file; there is nothing to wait for
func openSQLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.SQLite.LogSQL {
		tracer = pg.Tracer(s.Log, "sqlite")
	}
	db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path, BusyTimeoutMs: cfg.SQLite.BusyTimeoutMs})
	if err != nil {
		return nil, err
	}
	return newSQLAdapter(db, tracer, cfg.SQLite.SlowQueryMs), nil
}

// openCH connects the grant log; the client name defaults to the app name
func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	name := cfg.CH.ClientName
	if name == "" {
		name = cfg.AppName
	}
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, ClientName: name, ClientTag: cfg.CH.ClientTag})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

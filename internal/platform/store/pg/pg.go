// Package pg opens the pgx pool behind the postgres backend and carries its query tracer
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool configuration
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
	// AppName lands in pg_stat_activity.application_name
	AppName string
}

// PG is an open pool plus the tracer statements report to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option adjusts Open
type Option func(*PG, *pgxpool.Config)

// WithTracer reports every statement to t
func WithTracer(t QueryTracer) Option {
	return func(p *PG, _ *pgxpool.Config) { p.Tracer = t }
}

// WithPoolConfig lets callers tune the parsed pool config before the pool is built
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(_ *PG, pc *pgxpool.Config) { fn(pc) }
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool; connections are dialed lazily by pgx
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}

	p := &PG{SlowMs: cfg.SlowMs}
	for _, o := range opts {
		o(p, pc)
	}
	if p.Pool, err = newPool(ctx, pc); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the pool; safe on nil
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

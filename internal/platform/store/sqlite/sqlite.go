// Package sqlite provides an embedded, cgo-free SQLite client for single node deployments
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

// Config configures the embedded database
type Config struct {
	// Path is a file path or ":memory:"
	Path          string
	BusyTimeoutMs int
}

// DB is an embedded sqlite handle limited to a single writer connection
type DB struct {
	SQL *sql.DB
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
}

// Open opens (or creates) the database at cfg.Path and applies pragmas
func Open(ctx context.Context, cfg Config) (*DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// one connection serializes writers and keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	busy := cfg.BusyTimeoutMs
	if busy <= 0 {
		busy = 5000
	}
	stmts := append([]string{fmt.Sprintf("PRAGMA busy_timeout = %d", busy)}, pragmas...)
	for _, p := range stmts {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", p, err)
		}
	}
	return &DB{SQL: db}, nil
}

// Close closes the underlying handle
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

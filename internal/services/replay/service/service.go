// Package service implements the replay guard and its sweeper
package service

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"paygate/internal/modkit"
	"paygate/internal/modkit/repokit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/logger"
	"paygate/internal/services/replay/domain"
	"paygate/internal/services/replay/repo"
)

const (
	// DefaultTTL is how long a consumed reference stays recorded
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultCacheSize caps the in-process tier
	DefaultCacheSize = 10_000

	// DefaultSweepEvery is the sweeper cadence
	DefaultSweepEvery = time.Hour
)

// Config carries runtime knobs for the guard and sweeper
type Config struct {
	TTL        time.Duration
	CacheSize  int
	SweepEvery time.Duration
	Clock      domain.Clock
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = DefaultSweepEvery
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Svc implements the replay guard ports
//
// the cache is a fast negative filter only; the durable insert decides
type Svc struct {
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	cache  *lru.Cache
	config Config
	log    logger.Logger
}

var (
	_ domain.GuardPort   = (*Svc)(nil)
	_ domain.SweeperPort = (*Svc)(nil)
	_ domain.SchemaPort  = (*Svc)(nil)
)

// New constructs the replay guard
func New(deps modkit.Deps, cfg Config) *Svc {
	if deps.SQL == nil {
		panic("replay.Service requires a non nil TxRunner")
	}
	cfg = cfg.withDefaults()
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		panic("replay.Service: " + err.Error())
	}
	return &Svc{
		binder: repo.For(deps.Dialect),
		db:     deps.SQL,
		cache:  cache,
		config: cfg,
		log:    *logger.Named("replay"),
	}
}

func (s *Svc) repo() repo.Repo { return repokit.MustBind(s.binder, s.db) }

// EnsureSchema creates the durable table
func (s *Svc) EnsureSchema(ctx context.Context) error {
	return s.repo().EnsureSchema(ctx)
}

// IsUsed checks the cache then the durable store and backfills the cache on a durable hit
func (s *Svc) IsUsed(ctx context.Context, reference string) (bool, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return false, nil
	}
	if s.cached(reference) {
		return true, nil
	}
	rec, ok, err := s.repo().Get(ctx, reference)
	if err != nil {
		return false, perr.WithOp(err, "replay.IsUsed")
	}
	if ok {
		s.remember(rec.Reference, rec.RecordedAt)
	}
	return ok, nil
}

// Record performs the atomic insert; exactly one concurrent caller per reference sees first == true
func (s *Svc) Record(ctx context.Context, rec domain.Record) (bool, error) {
	rec.Reference = strings.TrimSpace(rec.Reference)
	if rec.Reference == "" {
		return false, perr.WithField(perr.InvalidArgf("reference is required"), "reference")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = s.config.Clock()
	}
	first, err := s.repo().Insert(ctx, rec)
	if err != nil {
		return false, perr.WithOp(err, "replay.Record")
	}
	// a loser caches its own timestamp; the winner's row is within the same request window
	s.remember(rec.Reference, rec.RecordedAt)
	if !first {
		s.log.Debug().Str("payment_ref", rec.Reference).Msg("reference already recorded")
	}
	return first, nil
}

func (s *Svc) cached(reference string) bool {
	v, ok := s.cache.Peek(reference)
	if !ok {
		return false
	}
	at, _ := v.(time.Time)
	if s.expired(at) {
		s.cache.Remove(reference)
		return false
	}
	return true
}

// remember uses Add without Get so eviction stays oldest first
func (s *Svc) remember(reference string, at time.Time) {
	s.cache.Add(reference, at)
}

func (s *Svc) expired(at time.Time) bool {
	return s.config.Clock().Sub(at) > s.config.TTL
}

// CacheLen reports the cache occupancy
func (s *Svc) CacheLen() int { return s.cache.Len() }

// Package service implements the account re-indexer
package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"paygate/internal/adapters/ledger"
	"paygate/internal/core/layout"
	"paygate/internal/modkit"
	"paygate/internal/modkit/repokit"
	"paygate/internal/platform/logger"
	"paygate/internal/services/indexer/domain"
	"paygate/internal/services/indexer/repo"
)

// Config carries runtime knobs for the indexer
type Config struct {
	Program     string
	Interval    time.Duration
	Concurrency int

	// LocalFeeBps is the configured split rate; the ledger value is only compared against it
	LocalFeeBps int
	Clock       func() time.Time
}

// Svc implements the indexer ports
type Svc struct {
	src    domain.AccountSource
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	config Config
	log    logger.Logger
}

var (
	_ domain.IndexerPort = (*Svc)(nil)
	_ domain.SchemaPort  = (*Svc)(nil)
)

// New constructs an indexer
func New(deps modkit.Deps, src domain.AccountSource, cfg Config) *Svc {
	if deps.SQL == nil {
		panic("indexer.Service requires a non nil TxRunner")
	}
	if src == nil {
		panic("indexer.Service requires an account source")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Svc{
		src:    src,
		binder: repo.For(deps.Dialect),
		db:     deps.SQL,
		config: cfg,
		log:    *logger.Named("indexer"),
	}
}

// EnsureSchema creates the read model tables
func (s *Svc) EnsureSchema(ctx context.Context) error {
	return repokit.MustBind(s.binder, s.db).EnsureSchema(ctx)
}

// kind pairs an account name with its decoder
// decode returns the store step for a well formed record
type kind struct {
	name   string
	decode func(a ledger.Account) (upsert func(context.Context, repo.Repo, time.Time) error, err error)
	count  func(*domain.Stats)
}

func (s *Svc) kinds() []kind {
	return []kind{
		{
			name: layout.NameEntityIdentity,
			decode: func(a ledger.Account) (func(context.Context, repo.Repo, time.Time) error, error) {
				e, err := layout.DecodeEntityIdentity(a.Data)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, r repo.Repo, at time.Time) error {
					return r.UpsertEntity(ctx, a.Address, e, at)
				}, nil
			},
			count: func(st *domain.Stats) { st.Entities++ },
		},
		{
			name: layout.NameEntityReputation,
			decode: func(a ledger.Account) (func(context.Context, repo.Repo, time.Time) error, error) {
				rep, err := layout.DecodeEntityReputation(a.Data)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context, r repo.Repo, at time.Time) error {
					return r.UpsertReputation(ctx, a.Address, rep, at)
				}, nil
			},
			count: func(st *domain.Stats) { st.Reputations++ },
		},
		{
			name: layout.NameProtocolState,
			decode: func(a ledger.Account) (func(context.Context, repo.Repo, time.Time) error, error) {
				p, err := layout.DecodeProtocolState(a.Data)
				if err != nil {
					return nil, err
				}
				s.compareFee(p)
				return func(ctx context.Context, r repo.Repo, at time.Time) error {
					return r.UpsertProtocol(ctx, a.Address, p, at)
				}, nil
			},
			count: func(st *domain.Stats) { st.Protocol++ },
		},
	}
}

// RunOnce fetches every known account type and upserts the decoded snapshots
// a malformed record is logged and skipped; only a failed fetch fails the pass
func (s *Svc) RunOnce(ctx context.Context) (domain.Stats, error) {
	var (
		mu    sync.Mutex
		stats domain.Stats
	)
	at := s.config.Clock().UTC()
	r := repokit.MustBind(s.binder, s.db)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, k := range s.kinds() {
		g.Go(func() error {
			disc := layout.Discriminator(k.name)
			accts, err := s.src.GetProgramAccounts(gctx, s.config.Program, disc[:])
			if err != nil {
				return err
			}
			local := domain.Stats{Scanned: len(accts)}
			for _, a := range accts {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if name, ok := layout.Classify(a.Data); !ok || name != k.name {
					local.Skipped++
					s.log.Warn().Str("account", a.Address).Str("want", k.name).Msg("unexpected discriminator; skipped")
					continue
				}
				upsert, err := k.decode(a)
				if err != nil {
					local.Skipped++
					s.log.Warn().Err(err).Str("account", a.Address).Str("kind", k.name).Msg("malformed account; skipped")
					continue
				}
				if err := upsert(gctx, r, at); err != nil {
					local.Failed++
					s.log.Error().Err(err).Str("account", a.Address).Str("kind", k.name).Msg("upsert failed")
					continue
				}
				k.count(&local)
			}

			mu.Lock()
			stats.Scanned += local.Scanned
			stats.Entities += local.Entities
			stats.Reputations += local.Reputations
			stats.Protocol += local.Protocol
			stats.Skipped += local.Skipped
			stats.Failed += local.Failed
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	s.log.Info().
		Int("scanned", stats.Scanned).
		Int("entities", stats.Entities).
		Int("reputations", stats.Reputations).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("index pass")
	return stats, err
}

// Run indexes on every tick until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	tick := func() {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("index pass failed")
		}
	}
	tick()

	t := time.NewTicker(s.config.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			tick()
		}
	}
}

// compareFee warns when the ledger's fee differs from the configured one; configuration wins
func (s *Svc) compareFee(p layout.ProtocolState) {
	if int(p.FeeBps) == s.config.LocalFeeBps {
		return
	}
	s.log.Warn().
		Int("ledger_fee_bps", int(p.FeeBps)).
		Int("local_fee_bps", s.config.LocalFeeBps).
		Msg("fee bps diverges from ledger protocol state; keeping local value")
}

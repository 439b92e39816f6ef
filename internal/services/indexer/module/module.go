// Package module wires the account re-indexer
package module

import (
	"paygate/internal/adapters/ledger"
	"paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	"paygate/internal/services/indexer/domain"
	"paygate/internal/services/indexer/service"
)

// Module defines the indexer module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the indexer from env; src defaults to a ledger client
func New(deps modkit.Deps, src domain.AccountSource) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), src)
}

// NewWith constructs the indexer from explicit options
func NewWith(deps modkit.Deps, opts Options, src domain.AccountSource) *Module {
	if src == nil {
		src = ledger.NewClient(opts.Ledger)
	}
	svc := service.New(deps, src, service.Config{
		Program:     opts.Program,
		Interval:    opts.Interval,
		Concurrency: opts.Concurrency,
		LocalFeeBps: opts.FeeBps,
	})
	deps.Log.Info().
		Str("program", opts.Program).
		Dur("interval", opts.Interval).
		Int("fee_bps", opts.FeeBps).
		Msg("indexer ready")
	return &Module{deps: deps, ports: Ports{Indexer: svc, Schema: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "indexer" }

// Ports returns the module ports (Indexer, Schema)
func (m *Module) Ports() any { return m.ports }

// MountRoutes exposes nothing; the read model is served by the entities module
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Package module wires the replay guard and exposes its ports
package module

import (
	"paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	"paygate/internal/services/replay/domain"
	"paygate/internal/services/replay/service"
)

// Module defines the replay module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the replay module; non zero overrides win over env
func New(deps modkit.Deps, overrides Options, clock domain.Clock) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.TTL > 0 {
		opts.TTL = overrides.TTL
	}
	if overrides.CacheSize > 0 {
		opts.CacheSize = overrides.CacheSize
	}
	if overrides.SweepEvery > 0 {
		opts.SweepEvery = overrides.SweepEvery
	}

	svc := service.New(deps, service.Config{
		TTL:        opts.TTL,
		CacheSize:  opts.CacheSize,
		SweepEvery: opts.SweepEvery,
		Clock:      clock,
	})
	return &Module{deps: deps, ports: Ports{Guard: svc, Sweeper: svc, Schema: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "replay" }

// Ports returns the module ports (Guard, Sweeper, Schema)
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes; the guard is consumed by the paywall
func (m *Module) MountRoutes(_ httpkit.Router) {}

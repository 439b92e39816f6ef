// Package module wires the entities read model into the API using modkit
package module

import (
	"context"

	modkit "paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	entitieshttp "paygate/internal/services/api/entities/http"
	entitiesrepo "paygate/internal/services/api/entities/repo"
	entitiessvc "paygate/internal/services/api/entities/service"
	indexrepo "paygate/internal/services/indexer/repo"
)

// Module implements the entities module
type Module struct {
	deps  modkit.Deps
	b     modkit.Built
	needs Needs
	svc   entitiessvc.Service
}

// Needs declares the ports this module requires from other modules
type Needs struct {
	// Payment guards the reputation route
	Payment httpkit.PaymentPort
}

// New constructs the entities module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("entities"), modkit.WithPrefix("/entities")}, opts...)...)

	needs, _ := modkit.Needs[Needs](b)
	if needs.Payment == nil {
		panic("entities module requires the paywall Payment port (from services/api/paywall)")
	}
	return &Module{
		deps:  deps,
		b:     b,
		needs: needs,
		svc:   entitiessvc.New(deps.SQL, entitiesrepo.For(deps.Dialect)),
	}
}

// EnsureSchema creates the read model tables the indexer fills
func (m *Module) EnsureSchema(ctx context.Context) error {
	return indexrepo.For(m.deps.Dialect).Bind(m.deps.SQL).EnsureSchema(ctx)
}

// MountRoutes mounts the read routes; reputation sits behind the payment port
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(sub httpkit.Router) {
		entitieshttp.Register(sub, m.svc, m.needs.Payment, httpkit.V1Prefix+m.b.Prefix)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the read model port
func (m *Module) Ports() any { return Ports{Entities: m.svc} }

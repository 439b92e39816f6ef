// Package module wires meta endpoints into the API
package module

import (
	"time"

	modkit "paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	"paygate/internal/platform/net/middleware"
	metahttp "paygate/internal/services/api/meta/http"
)

type metaModule struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs the meta module; readiness pings share a 5s request budget
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithMiddlewares(middleware.Timeout(5 * time.Second)),
	}, opts...)...)

	sqlName := "sql"
	if deps.Dialect != "" {
		sqlName = string(deps.Dialect)
	}
	checks := []metahttp.Check{{Name: sqlName}, {Name: "clickhouse"}}
	if deps.SQL != nil {
		checks[0].Target = deps.SQL
	}
	if deps.CH != nil {
		checks[1].Target = deps.CH
	}
	return &metaModule{b: b, deps: metahttp.Deps{
		ServiceName: deps.Cfg.Prefix("PAYGATE_API_").MayString("SERVICE_NAME", "paygate-api"),
		StartedAt:   time.Now(),
		Checks:      checks,
	}}
}

func (m *metaModule) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(sub httpkit.Router) { metahttp.Register(sub, m.deps) })
}

func (m *metaModule) Name() string { return m.b.Name }
func (m *metaModule) Ports() any   { return nil }

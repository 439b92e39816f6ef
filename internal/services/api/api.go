// Package api provides the HTTP API for the application
package api

import (
	"context"

	"paygate/internal/platform/config"
	"paygate/internal/platform/logger"
	phttp "paygate/internal/platform/net/http"
	"paygate/internal/platform/store"

	"paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	"paygate/internal/modkit/module"
	"paygate/internal/modkit/swaggerkit"

	entitiesmod "paygate/internal/services/api/entities/module"
	metamod "paygate/internal/services/api/meta/module"
	paywallmod "paygate/internal/services/api/paywall/module"
	replaydom "paygate/internal/services/replay/domain"
	replaymod "paygate/internal/services/replay/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Docs           swaggerkit.Options
	EnableProfiler bool
}

// Mounted exposes the lifecycle hooks of the mounted modules
type Mounted struct {
	// Sweeper evicts expired payment references; the caller runs it
	Sweeper replaydom.SweeperPort

	schemas []func(context.Context) error
	waits   []func()
}

// EnsureSchema creates every table the mounted modules own
func (m Mounted) EnsureSchema(ctx context.Context) error {
	for _, fn := range m.schemas {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Wait drains in flight side effects after the server stopped
func (m Mounted) Wait() {
	for _, fn := range m.waits {
		fn()
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Mounted {
	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}
	deps := modkit.FromStore(*log, opt.Config, opt.Store)

	// the replay guard owns the Guard port every payment path goes through
	replay := replaymod.New(deps, replaymod.Options{}, nil)
	guard := module.MustPortsOf[replaymod.Ports](replay)

	paywall := paywallmod.New(deps, modkit.WithPorts(paywallmod.Needs{Guard: guard.Guard}))
	pay := module.MustPortsOf[paywallmod.Ports](paywall)

	entities := entitiesmod.New(deps, modkit.WithPorts(entitiesmod.Needs{Payment: pay.Payment}))

	mods := []module.Module{
		metamod.New(deps),
		replay,
		paywall,
		entities,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	// Swagger + profiler
	swaggerkit.Mount(r, opt.Docs)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	return Mounted{
		Sweeper: guard.Sweeper,
		schemas: []func(context.Context) error{guard.Schema.EnsureSchema, paywall.EnsureSchema, entities.EnsureSchema},
		waits:   []func(){paywall.Wait},
	}
}

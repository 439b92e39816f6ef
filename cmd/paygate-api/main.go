// @title         Paygate API
// @version       0.1.0
// @description   Payment verification, replay protected access and the entities read model

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"paygate/internal/modkit/repokit"
	"paygate/internal/modkit/swaggerkit"
	"paygate/internal/platform/config"
	"paygate/internal/platform/logger"
	phttp "paygate/internal/platform/net/http"
	"paygate/internal/platform/store"

	"paygate/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (PAYGATE_API_*)
	root := config.New()
	apiCfg := root.Prefix("PAYGATE_API_")

	// bring up logging early
	logger.Init(logger.FromEnv().ForService("paygate-api"))
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres or embedded sqlite, optional CH grant log)
	st, err := store.Open(ctx, store.FromConfig(root, "paygate", "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st, 10*time.Second)

	// http server (reads PAYGATE_API_PORT etc)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	mounted := api.Mount(
		srv.Router(),
		api.Options{
			Config: root,
			Store:  st,
			Logger: l,
			Docs: swaggerkit.Options{
				Enabled:     apiCfg.MayBool("SWAGGER", true),
				TitleSuffix: apiCfg.MayString("DOCS_TITLE_SUFFIX", ""),
			},
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)
	if err := mounted.EnsureSchema(ctx); err != nil {
		l.Panic().Err(err).Msg("schema setup failed")
	}

	// run the server and the replay sweeper until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return mounted.Sweeper.Run(gctx) })

	err = g.Wait()
	mounted.Wait()
	if err != nil {
		l.Error().Err(err).Msg("api stopped")
		return
	}
	l.Info().Msg("api stopped")
}

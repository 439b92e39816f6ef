package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/modkit"
	"paygate/internal/modkit/module"
	"paygate/internal/modkit/repokit"
	"paygate/internal/platform/config"
	"paygate/internal/platform/logger"
	"paygate/internal/platform/store"

	replaymod "paygate/internal/services/replay/module"
)

func main() {
	var (
		fOnce  = flag.Bool("once", false, "sweep once and exit")
		fEvery = flag.Duration("every", 0, "sweep interval (overrides PAYGATE_REPLAY_SWEEP_EVERY)")
	)
	flag.Parse()

	root := config.New()
	logger.Init(logger.FromEnv().ForService("paygate-sweeper"))
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConfig(root, "paygate", "sweeper"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st, 10*time.Second)

	deps := modkit.FromStore(*l, root, st)
	rm := replaymod.New(deps, replaymod.Options{SweepEvery: *fEvery}, nil)
	ports := module.MustPortsOf[replaymod.Ports](rm)

	if err := ports.Schema.EnsureSchema(ctx); err != nil {
		l.Fatal().Err(err).Msg("replay schema setup failed")
	}

	if *fOnce {
		n, err := ports.Sweeper.SweepOnce(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("sweep failed")
		}
		l.Info().Int64("deleted", n).Msg("sweep done")
		return
	}
	if err := ports.Sweeper.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("sweeper stopped")
	}
}

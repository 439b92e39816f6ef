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

	indexmod "paygate/internal/services/indexer/module"
)

func main() {
	fOnce := flag.Bool("once", false, "run a single indexing pass and exit")
	flag.Parse()

	root := config.New()
	logger.Init(logger.FromEnv().ForService("paygate-indexer"))
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConfig(root, "paygate", "indexer"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st, 10*time.Second)

	// nil source means a ledger client built from LEDGER_* and INDEXER_LEDGER_MAX_RETRIES
	im := indexmod.New(modkit.FromStore(*l, root, st), nil)
	ports := module.MustPortsOf[indexmod.Ports](im)

	if err := ports.Schema.EnsureSchema(ctx); err != nil {
		l.Fatal().Err(err).Msg("read model schema setup failed")
	}

	if *fOnce {
		stats, err := ports.Indexer.RunOnce(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("index pass failed")
		}
		l.Info().Interface("stats", stats).Msg("index pass done")
		return
	}
	if err := ports.Indexer.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("indexer stopped")
	}
}

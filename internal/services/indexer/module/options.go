package module

import (
	"time"

	"paygate/internal/adapters/ledger"
	"paygate/internal/platform/config"
)

// Options controls the re-indexer. Values are read from env
type Options struct {
	Program     string
	Interval    time.Duration
	Concurrency int
	FeeBps      int
	Ledger      ledger.Options
}

// FromConfig reads INDEXER_ options plus the shared PAYGATE_FEE_BPS and LEDGER_ client settings
// the indexer retries upstream calls unless INDEXER_LEDGER_MAX_RETRIES says otherwise
func FromConfig(cfg config.Conf) Options {
	ic := cfg.Prefix("INDEXER_")
	lopts := ledger.OptionsFromConfig(cfg)
	lopts.MaxRetries = ic.MayIntRange("LEDGER_MAX_RETRIES", 3, 0, 10)
	return Options{
		Program:     ic.MustString("PROGRAM_ID"),
		Interval:    ic.MayDuration("INTERVAL", 5*time.Minute),
		Concurrency: ic.MayIntRange("CONCURRENCY", 3, 1, 16),
		FeeBps:      cfg.Prefix("PAYGATE_").MayIntRange("FEE_BPS", 250, 0, 10_000),
		Ledger:      lopts,
	}
}

package ledger

import (
	"time"

	"paygate/internal/platform/config"
)

// OptionsFromConfig reads client options using the LEDGER_ prefix
func OptionsFromConfig(cfg config.Conf) Options {
	lc := cfg.Prefix("LEDGER_")
	return Options{
		URL:        lc.MayString("RPC_URL", defaultURL),
		Timeout:    lc.MayDuration("TIMEOUT", defaultTimeout),
		Commitment: lc.MayEnum("COMMITMENT", defaultCommitment, "processed", "confirmed", "finalized"),
		MaxRetries: lc.MayIntRange("MAX_RETRIES", 0, 0, 10),
		RetryBase:  lc.MayDuration("RETRY_BASE", 250*time.Millisecond),
	}
}

package notify

import (
	"time"

	"paygate/internal/platform/config"
)

// OptionsFromConfig reads webhook options using the NOTIFY_ prefix
func OptionsFromConfig(cfg config.Conf) Options {
	nc := cfg.Prefix("NOTIFY_")
	return Options{
		URL:     nc.MayString("WEBHOOK_URL", ""),
		Secret:  nc.MayString("WEBHOOK_SECRET", ""),
		Timeout: nc.MayDuration("TIMEOUT", 3*time.Second),
	}
}

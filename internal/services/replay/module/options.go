package module

import (
	"time"

	"paygate/internal/platform/config"
	"paygate/internal/services/replay/service"
)

// Options controls replay guard behavior. Values may also be read from env
type Options struct {
	TTL        time.Duration
	CacheSize  int
	SweepEvery time.Duration
}

// FromConfig reads options using PAYGATE_ prefix
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("PAYGATE_")
	return Options{
		TTL:        pc.MayDuration("REPLAY_TTL", service.DefaultTTL),
		CacheSize:  pc.MayIntRange("REPLAY_CACHE_SIZE", service.DefaultCacheSize, 1, 10_000_000),
		SweepEvery: pc.MayDuration("REPLAY_SWEEP_EVERY", service.DefaultSweepEvery),
	}
}

// Package config reads settings from the environment through prefixed views
// such as PAYGATE_API_, PAYWALL_ or LEDGER_
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"paygate/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Conf is a view over the environment; every key is read as prefix+key
type Conf struct{ prefix string }

// New is the unprefixed root view
func New() Conf { return Conf{} }

// Prefix narrows the view, e.g. New().Prefix("PAYWALL_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// may parses key with parse; empty yields def, unparsable yields def plus a warning
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("unparsable env; using default")
		return def
	}
	return v
}

func fail(key string) *zerolog.Event {
	return logger.Get().Panic().Str("key", key)
}

// MustString returns key or panics when it is unset
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		fail(c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns key or def
func (c Conf) MayString(key, def string) string {
	return may(c, key, def, func(s string) (string, error) { return s, nil })
}

// MayInt returns key as an int or def
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayInt64 returns key as an int64 or def; amounts in base units go through here
func (c Conf) MayInt64(key string, def int64) int64 {
	return may(c, key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// MayFloat64 returns key as a float64 or def
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns key as a bool or def
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns key as a duration (250ms, 10m) or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayIntRange is MayInt that panics outside [lo, hi] instead of clamping
func (c Conf) MayIntRange(key string, def, lo, hi int) int {
	v := c.MayInt(key, def)
	if v < lo || v > hi {
		fail(c.key(key)).Int("value", v).Int("min", lo).Int("max", hi).Msg("value out of range")
	}
	return v
}

// MayCSV splits key on commas, dropping blanks; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns key or def and panics when the value is not one of allowed (case insensitive)
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	fail(c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

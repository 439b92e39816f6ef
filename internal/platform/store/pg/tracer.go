package pg

import (
	"context"
	"strings"
	"time"

	"paygate/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one statement round trip
type QueryEvent struct {
	SQL     string
	Args    any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// TracerFunc adapts a plain function to QueryTracer
type TracerFunc func(context.Context, QueryEvent)

func (f TracerFunc) OnQuery(ctx context.Context, ev QueryEvent) { f(ctx, ev) }

// Tracer logs each statement at info and slow ones at warn
// the logger is pinned to debug so enabling SQL logs does not depend on the root level
// component tags the backend and defaults to "pg"
func Tracer(root logger.Logger, component ...string) QueryTracer {
	comp := "pg"
	if len(component) > 0 && component[0] != "" {
		comp = component[0]
	}
	log := root.Level(zerolog.DebugLevel).With().Str("component", comp).Logger()

	return TracerFunc(func(ctx context.Context, ev QueryEvent) {
		lvl := zerolog.InfoLevel
		if ev.Slow {
			lvl = zerolog.WarnLevel
		}
		e := log.WithLevel(lvl)
		if ref := logger.PaymentRef(ctx); ref != "" {
			e = e.Str("payment_ref", ref)
		}
		e.Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000).
			Bool("slow", ev.Slow).
			Str("sql", compact(ev.SQL)).
			Interface("args", ev.Args).
			Err(ev.Err).
			Msg("sql query")
	})
}

// compact collapses whitespace runs to one space; a run at either end survives as one space
func compact(s string) string {
	if strings.TrimSpace(s) == "" {
		return strings.TrimSpace(s)
	}
	out := strings.Join(strings.Fields(s), " ")
	if s[0] <= ' ' {
		out = " " + out
	}
	if s[len(s)-1] <= ' ' {
		out += " "
	}
	return out
}

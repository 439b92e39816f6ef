package store

import (
	"context"
	"time"

	"paygate/internal/platform/store/pg"
)

// traceFunc reports one finished statement
type traceFunc func(ctx context.Context, sql string, args []any, start time.Time, err error)

// newTrace builds the reporter shared by the pg and sqlite adapters; a nil tracer reports nothing
// slowMs < 0 never marks a statement slow
func newTrace(t pg.QueryTracer, slowMs int) traceFunc {
	if t == nil {
		return func(context.Context, string, []any, time.Time, error) {}
	}
	slow := time.Duration(slowMs) * time.Millisecond
	return func(ctx context.Context, sql string, args []any, start time.Time, err error) {
		elapsed := time.Since(start)
		t.OnQuery(ctx, pg.QueryEvent{
			SQL:     sql,
			Args:    args,
			Elapsed: elapsed,
			Err:     err,
			Slow:    slow >= 0 && elapsed >= slow,
		})
	}
}

// row defers the trace until Scan so row errors are reported too
type row struct {
	r     Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	x.after(err)
	return err
}

// Package repokit holds the small contracts sql repos are written against
package repokit

import (
	"context"
	"fmt"
	"time"

	"paygate/internal/platform/store"
)

type (
	// Queryer is what a bound repo runs statements on: the pool or an open tx
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can also open transactions
	TxRunner = store.TxRunner
)

// Binder binds a repo to a Queryer; there is one per sql dialect
type Binder[T any] interface {
	Bind(Queryer) T
}

// Dialected returns lite for sqlite and pg for anything else
func Dialected[T any](d store.Dialect, pg, lite Binder[T]) Binder[T] {
	if d == store.DialectSQLite {
		return lite
	}
	return pg
}

// MustBind binds b to q; a nil q means the store was never opened
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind on a nil Queryer")
	}
	return b.Bind(q)
}

// MustGuard pings every backend g opened and panics if one stays silent past timeout
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("repokit: dependency guard: %w", err))
	}
}

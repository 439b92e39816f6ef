// Package repo writes paywall grants to clickhouse
package repo

import (
	"context"

	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/store"
	"paygate/internal/services/api/paywall/domain"
)

// GrantsTable is the analytics table name
const GrantsTable = "paygate_grants"

// CH is a clickhouse backed grant log
type CH struct{ ch store.Clickhouse }

var _ domain.GrantLogPort = (*CH)(nil)

// NewCH returns a grant log; a nil client yields nil so callers can skip analytics
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		return nil
	}
	return &CH{ch: ch}
}

// EnsureSchema creates the grants table when missing
func (r *CH) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS ` + GrantsTable + ` (
			granted_at   DateTime64(3, 'UTC'),
			reference    String,
			amount       UInt64,
			agent_share  UInt64,
			platform_fee UInt64,
			fee_bps      UInt16,
			sender       String,
			recipient    String,
			route        String,
			via          LowCardinality(String)
		)
		ENGINE = MergeTree
		ORDER BY (granted_at, reference)
	`
	if err := r.ch.Exec(ctx, ddl); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "create "+GrantsTable)
	}
	return nil
}

// Append inserts one grant row
func (r *CH) Append(ctx context.Context, g domain.Grant) error {
	row := []any{
		g.GrantedAt.UTC(),
		g.Reference,
		g.Amount,
		g.AgentShare,
		g.PlatformFee,
		g.FeeBps,
		g.Sender,
		g.Recipient,
		g.Route,
		g.Via,
	}
	if err := r.ch.Insert(ctx, GrantsTable, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert "+GrantsTable)
	}
	return nil
}

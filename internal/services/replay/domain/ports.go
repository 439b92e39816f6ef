// Package domain defines the public ports for the replay guard
package domain

import (
	"context"
	"time"
)

// Record is one consumed payment reference
// written once, never updated, removed by the sweeper after the TTL
type Record struct {
	Reference  string    `json:"reference"`
	Amount     uint64    `json:"amount"`
	Recipient  string    `json:"recipient"`
	RecordedAt time.Time `json:"recordedAt"`
}

// GuardPort is the at most once gate for payment references
type GuardPort interface {
	// IsUsed is advisory; Record is the only authoritative decision
	IsUsed(ctx context.Context, reference string) (bool, error)

	// Record inserts rec if its reference is new and reports whether this call was first
	Record(ctx context.Context, rec Record) (first bool, err error)
}

// SweeperPort removes records older than the TTL
type SweeperPort interface {
	SweepOnce(ctx context.Context) (int64, error)
	Run(ctx context.Context) error
}

// SchemaPort creates the replay table when missing
type SchemaPort interface {
	EnsureSchema(ctx context.Context) error
}

// Clock is injected so tests control time
type Clock func() time.Time

// Package domain defines the re-indexer ports
package domain

import (
	"context"

	"paygate/internal/adapters/ledger"
)

// AccountSource lists program accounts whose data starts with discriminator
type AccountSource interface {
	GetProgramAccounts(ctx context.Context, program string, discriminator []byte) ([]ledger.Account, error)
}

// Stats summarises one indexing pass
type Stats struct {
	Scanned     int `json:"scanned"`
	Entities    int `json:"entities"`
	Reputations int `json:"reputations"`
	Protocol    int `json:"protocol"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// IndexerPort runs indexing passes
type IndexerPort interface {
	RunOnce(ctx context.Context) (Stats, error)
	Run(ctx context.Context) error
}

// SchemaPort creates the read model tables when missing
type SchemaPort interface {
	EnsureSchema(ctx context.Context) error
}

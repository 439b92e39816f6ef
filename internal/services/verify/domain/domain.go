// Package domain defines the transaction verifier contract and its error reasons
package domain

import (
	"context"
	"strings"

	"paygate/internal/adapters/ledger"
	perr "paygate/internal/platform/errors"
)

// Mode selects whether non production shortcuts are reachable
type Mode string

const (
	// ModeProduction disables every bypass
	ModeProduction Mode = "production"
	// ModeDevelopment enables dev_ prefixed references
	ModeDevelopment Mode = "development"
)

// ParseMode accepts only the two known modes; anything else is production
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeDevelopment)) {
		return ModeDevelopment
	}
	return ModeProduction
}

// verifier error reasons, stable on the wire
const (
	ReasonInvalidReferenceFormat  = "InvalidReferenceFormat"
	ReasonAlreadyUsed             = "AlreadyUsed"
	ReasonNotFound                = ledger.ReasonNotFound
	ReasonTransactionFailed       = "TransactionFailed"
	ReasonTransactionExpired      = "TransactionExpired"
	ReasonInsufficientTransfer    = "InsufficientTransfer"
	ReasonUpstreamUnavailable     = ledger.ReasonUpstreamUnavailable
	ReasonInvalidRecipientAddress = "InvalidRecipientAddress"
	ReasonInvalidAmount           = "InvalidAmount"
)

// Request is what the gate asks the verifier to confirm
type Request struct {
	Reference string
	Recipient string
	Amount    uint64
}

// VerifiedPayment is created once per successful verification
type VerifiedPayment struct {
	Reference string `json:"reference"`
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// VerifierPort confirms a referenced transaction paid the recipient
type VerifierPort interface {
	Verify(ctx context.Context, req Request) (VerifiedPayment, error)
}

// LedgerPort is the read side of the external ledger the verifier needs
type LedgerPort interface {
	GetTransaction(ctx context.Context, reference string) (ledger.Transaction, error)
}

// AlreadyUsed is reported identically regardless of when the prior use happened
func AlreadyUsed() error {
	return perr.Kind(perr.ErrorCodePaymentRequired, ReasonAlreadyUsed, "payment reference already used")
}

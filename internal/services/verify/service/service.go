// Package service implements the transaction verifier
package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/logger"
	replay "paygate/internal/services/replay/domain"
	"paygate/internal/services/verify/domain"
)

const (
	// DefaultMinReferenceLen rejects obviously truncated references before any I/O
	DefaultMinReferenceLen = 32

	// MaxReferenceLen bounds untrusted input
	MaxReferenceLen = 128

	// DevPrefix marks bypass references in development mode
	DevPrefix = "dev_"

	// DevSender is reported as the payer of bypassed payments
	DevSender = "dev"
)

// Config carries verifier knobs
type Config struct {
	Mode            domain.Mode
	Mint            string
	MinReferenceLen int

	// MaxAge rejects transactions older than this; zero disables the check
	MaxAge time.Duration
	Clock  func() time.Time
}

// Svc implements domain.VerifierPort
type Svc struct {
	ledger domain.LedgerPort
	guard  replay.GuardPort
	config Config
	log    logger.Logger
}

var _ domain.VerifierPort = (*Svc)(nil)

// New constructs a verifier
func New(l domain.LedgerPort, g replay.GuardPort, cfg Config) *Svc {
	if l == nil || g == nil {
		panic("verify.Service requires a ledger and a replay guard")
	}
	if cfg.MinReferenceLen <= 0 {
		cfg.MinReferenceLen = DefaultMinReferenceLen
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeProduction
	}
	if cfg.Mode != domain.ModeDevelopment && strings.TrimSpace(cfg.Mint) == "" {
		panic("verify.Service requires a token mint outside development mode")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Svc{ledger: l, guard: g, config: cfg, log: *logger.Named("verifier")}
}

// Verify confirms req.Reference moved at least req.Amount to req.Recipient and consumes the reference
func (s *Svc) Verify(ctx context.Context, req domain.Request) (domain.VerifiedPayment, error) {
	ref := strings.TrimSpace(req.Reference)
	if err := s.checkRequest(ref, req); err != nil {
		return domain.VerifiedPayment{}, err
	}

	used, err := s.guard.IsUsed(ctx, ref)
	if err != nil {
		return domain.VerifiedPayment{}, err
	}
	if used {
		return domain.VerifiedPayment{}, domain.AlreadyUsed()
	}

	var vp domain.VerifiedPayment
	if s.config.Mode == domain.ModeDevelopment && strings.HasPrefix(ref, DevPrefix) {
		vp = domain.VerifiedPayment{Reference: ref, Amount: req.Amount, Recipient: req.Recipient, Sender: DevSender}
		s.log.Warn().Str("payment_ref", ref).Msg("development bypass accepted")
	} else {
		vp, err = s.confirm(ctx, ref, req)
		if err != nil {
			return domain.VerifiedPayment{}, err
		}
	}

	first, err := s.guard.Record(ctx, replay.Record{
		Reference:  vp.Reference,
		Amount:     vp.Amount,
		Recipient:  vp.Recipient,
		RecordedAt: s.config.Clock(),
	})
	if err != nil {
		return domain.VerifiedPayment{}, err
	}
	if !first {
		// lost the race to a concurrent verification of the same reference
		return domain.VerifiedPayment{}, domain.AlreadyUsed()
	}

	s.log.Info().
		Str("payment_ref", vp.Reference).
		Uint64("amount", vp.Amount).
		Str("sender", vp.Sender).
		Msg("payment verified")
	return vp, nil
}

func (s *Svc) checkRequest(ref string, req domain.Request) error {
	if len(ref) < s.config.MinReferenceLen || len(ref) > MaxReferenceLen ||
		strings.ContainsFunc(ref, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) {
		return perr.WithField(
			perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidReferenceFormat, "malformed payment reference"),
			"reference")
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return perr.WithField(
			perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidRecipientAddress, "recipient is required"),
			"recipient")
	}
	if req.Amount == 0 {
		return perr.WithField(
			perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidAmount, "amount must be positive"),
			"amount")
	}
	return nil
}

// confirm reads the ledger and checks the transfer
func (s *Svc) confirm(ctx context.Context, ref string, req domain.Request) (domain.VerifiedPayment, error) {
	tx, err := s.ledger.GetTransaction(ctx, ref)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.VerifiedPayment{}, perr.Kind(perr.ErrorCodeNotFound, domain.ReasonNotFound, "transaction not found")
	case err != nil:
		// upstream text never reaches the caller; log it here
		s.log.Warn().Err(err).Str("payment_ref", ref).Msg("ledger read failed")
		return domain.VerifiedPayment{}, perr.Kind(perr.ErrorCodeUnavailable, domain.ReasonUpstreamUnavailable, "ledger unavailable")
	}

	if tx.Failed {
		return domain.VerifiedPayment{}, perr.Kind(perr.ErrorCodePaymentRequired, domain.ReasonTransactionFailed, "transaction failed on ledger")
	}
	if s.config.MaxAge > 0 {
		// an unknown block time cannot prove the payment is younger than the replay window
		if tx.BlockTime <= 0 {
			return domain.VerifiedPayment{}, perr.Kind(perr.ErrorCodePaymentRequired, domain.ReasonTransactionExpired, "transaction block time unknown")
		}
		if s.config.Clock().Sub(time.Unix(tx.BlockTime, 0)) > s.config.MaxAge {
			return domain.VerifiedPayment{}, perr.Kind(perr.ErrorCodePaymentRequired, domain.ReasonTransactionExpired, "transaction too old")
		}
	}

	t := matchBalances(tx.Pre, tx.Post, s.config.Mint, req.Recipient)
	if t.increase < req.Amount {
		err := perr.Kind(perr.ErrorCodePaymentRequired, domain.ReasonInsufficientTransfer, "transfer below required amount")
		err = perr.WithDetail(err, "observed", clampInt64(t.increase))
		return domain.VerifiedPayment{}, perr.WithDetail(err, "required", clampInt64(req.Amount))
	}

	// overpayment is accepted and not refunded
	return domain.VerifiedPayment{Reference: ref, Amount: t.increase, Recipient: req.Recipient, Sender: t.sender}, nil
}

func clampInt64(v uint64) int64 {
	const maxInt64 = 1<<63 - 1
	if v > maxInt64 {
		return maxInt64
	}
	return int64(v)
}

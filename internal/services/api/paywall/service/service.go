// Package service implements the payment gate
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygate/internal/adapters/notify"
	"paygate/internal/core/accesstoken"
	"paygate/internal/core/feesplit"
	"paygate/internal/modkit/httpkit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/logger"
	"paygate/internal/services/api/paywall/domain"
	replay "paygate/internal/services/replay/domain"
	verify "paygate/internal/services/verify/domain"
)

// DefaultScheme is the Authorization scheme carrying a payment proof
const DefaultScheme = "x402"

// Config describes the priced resource and how the challenge advertises it
type Config struct {
	Price                uint64
	Currency             string
	Network              string
	Recipient            string
	VerificationEndpoint string
	Scheme               string
	GrantLogTimeout      time.Duration
}

// Deps are the collaborators the gate drives
type Deps struct {
	Verifier verify.VerifierPort
	Guard    replay.GuardPort
	Tokens   *accesstoken.Issuer
	Fees     feesplit.Calculator
	Notifier *notify.Notifier

	// Grants may be nil; analytics are optional
	Grants domain.GrantLogPort
	Clock  func() time.Time
	Memo   func() string
}

// Svc implements domain.GatePort
type Svc struct {
	deps   Deps
	config Config
	log    logger.Logger
	wg     sync.WaitGroup
}

var _ domain.GatePort = (*Svc)(nil)

// New constructs the gate
func New(d Deps, cfg Config) *Svc {
	if d.Verifier == nil || d.Guard == nil || d.Tokens == nil {
		panic("paywall.Service requires a verifier, a replay guard and a token issuer")
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Memo == nil {
		d.Memo = uuid.NewString
	}
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.GrantLogTimeout <= 0 {
		cfg.GrantLogTimeout = 2 * time.Second
	}
	return &Svc{deps: d, config: cfg, log: *logger.Named("paywall")}
}

// Terms returns a fresh challenge for the priced resource
func (s *Svc) Terms(_ *http.Request) domain.Challenge {
	return domain.Challenge{
		ProtocolVersion:      domain.ProtocolVersion,
		Price:                s.config.Price,
		Currency:             s.config.Currency,
		Network:              s.config.Network,
		Recipient:            s.config.Recipient,
		VerificationEndpoint: s.config.VerificationEndpoint,
		Memo:                 s.deps.Memo(),
	}
}

// Verify confirms a submitted payment, splits the fee and mints an access token
func (s *Svc) Verify(ctx context.Context, in domain.VerifyRequest) (domain.VerifyResponse, error) {
	if in.Amount <= 0 || in.Amount > domain.MaxAmount {
		return domain.VerifyResponse{}, perr.WithField(
			perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidAmount, "amount out of range"), "amount")
	}
	// grants only ever pay for the advertised terms
	if in.Recipient != s.config.Recipient {
		return domain.VerifyResponse{}, perr.WithField(
			perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidRecipientAddress, "recipient does not match the gate"), "recipient")
	}
	if uint64(in.Amount) < s.config.Price {
		err := perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidAmount, "amount below the advertised price")
		return domain.VerifyResponse{}, perr.WithField(perr.WithDetail(err, "required", int64(min(s.config.Price, uint64(domain.MaxAmount)))), "amount")
	}
	vp, err := s.deps.Verifier.Verify(ctx, verify.Request{
		Reference: in.Reference,
		Recipient: in.Recipient,
		Amount:    uint64(in.Amount),
	})
	if err != nil {
		return domain.VerifyResponse{}, err
	}

	split := s.deps.Fees.Split(vp.Amount)
	token, _, err := s.deps.Tokens.Issue(vp.Reference, vp.Amount, vp.Recipient)
	if err != nil {
		// the reference is already consumed; the caller keeps the grant but gets no token
		s.log.Error().Err(err).Str("payment_ref", vp.Reference).Msg("token issue failed")
		return domain.VerifyResponse{}, err
	}
	s.granted(ctx, vp, split, "POST "+s.config.VerificationEndpoint, domain.ViaVerify)

	return domain.VerifyResponse{
		Success:     true,
		AccessToken: token,
		Verification: domain.Verification{
			Amount:      split.Total,
			AgentShare:  split.AgentShare,
			PlatformFee: split.PlatformFee,
			Sender:      vp.Sender,
		},
	}, nil
}

// Authorize accepts a payment proof or a previously issued access token
func (s *Svc) Authorize(r *http.Request) (string, error) {
	scheme, cred, ok := httpkit.Authorization(r)
	if !ok {
		return "", perr.Kind(perr.ErrorCodePaymentRequired, domain.ReasonPaymentRequired, "payment required")
	}
	switch scheme {
	case "bearer":
		return s.authorizeToken(r.Context(), cred)
	case strings.ToLower(s.config.Scheme):
		return s.authorizeProof(r, cred)
	default:
		return "", perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidProofEncoding, "unsupported authorization scheme")
	}
}

func (s *Svc) authorizeProof(r *http.Request, cred string) (string, error) {
	ref, err := decodeProof(cred)
	if err != nil {
		return "", err
	}
	ctx := logger.WithPayment(r.Context(), ref)
	vp, err := s.deps.Verifier.Verify(ctx, verify.Request{
		Reference: ref,
		Recipient: s.config.Recipient,
		Amount:    s.config.Price,
	})
	if err != nil {
		logger.C(ctx).Info().Str("reason", perr.ReasonOf(err)).Msg("payment proof rejected")
		return "", err
	}
	s.granted(ctx, vp, s.deps.Fees.Split(vp.Amount), r.Method+" "+r.URL.Path, domain.ViaProof)
	return vp.Sender, nil
}

// authorizeToken reuses a verified payment while its reference is still recorded
func (s *Svc) authorizeToken(ctx context.Context, token string) (string, error) {
	p, err := s.deps.Tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if p.Recipient != s.config.Recipient || p.Amount < s.config.Price {
		return "", perr.Kind(perr.ErrorCodeUnauthorized, accesstoken.ReasonTokenInvalid, "invalid access token")
	}
	used, err := s.deps.Guard.IsUsed(ctx, p.Reference)
	if err != nil {
		return "", err
	}
	if !used {
		return "", perr.Kind(perr.ErrorCodeUnauthorized, accesstoken.ReasonTokenInvalid, "invalid access token")
	}
	logger.C(logger.WithPayment(ctx, p.Reference)).Debug().Msg("access token accepted")
	return "", nil
}

// Challenge renders the 402 body with the refusal reason attached
// non payment failures keep their own status so clients can tell a bad proof from an outage
func (s *Svc) Challenge(r *http.Request, err error) (int, any) {
	c := s.Terms(r)
	status := http.StatusPaymentRequired
	if err != nil {
		w := perr.WireFrom(err)
		c.Error = &domain.ChallengeError{Reason: w.Reason, Message: w.Message, Details: w.Details}
		if st := perr.HTTPStatus(err); st != http.StatusInternalServerError {
			status = st
		}
	}
	if status == http.StatusUnauthorized {
		// a dead token is answered with a fresh challenge
		status = http.StatusPaymentRequired
	}
	return status, c
}

// granted fans out the side effects of a grant; none of them can change the outcome
func (s *Svc) granted(ctx context.Context, vp verify.VerifiedPayment, split feesplit.Split, route, via string) {
	now := s.deps.Clock().UTC()
	s.deps.Notifier.Notify(notify.Event{
		Type:        notify.EventGranted,
		Reference:   vp.Reference,
		Amount:      split.Total,
		AgentShare:  split.AgentShare,
		PlatformFee: split.PlatformFee,
		Sender:      vp.Sender,
		Recipient:   vp.Recipient,
		Route:       route,
		GrantedAt:   now,
	})
	if s.deps.Grants == nil {
		return
	}
	g := domain.Grant{
		Reference:   vp.Reference,
		Amount:      split.Total,
		AgentShare:  split.AgentShare,
		PlatformFee: split.PlatformFee,
		FeeBps:      split.PlatformFeeBps,
		Sender:      vp.Sender,
		Recipient:   vp.Recipient,
		Route:       route,
		Via:         via,
		GrantedAt:   now,
	}
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		lctx, cancel := context.WithTimeout(bg, s.config.GrantLogTimeout)
		defer cancel()
		if err := s.deps.Grants.Append(lctx, g); err != nil {
			logger.C(bg).Warn().Err(err).Str("payment_ref", g.Reference).Msg("grant log append failed")
		}
	}()
}

// Wait blocks until in flight grant side effects finish
func (s *Svc) Wait() {
	s.wg.Wait()
	s.deps.Notifier.Wait()
}

type proofBody struct {
	Reference string `json:"reference"`
}

// decodeProof reads base64(JSON{reference}); padded and unpadded forms are accepted
func decodeProof(cred string) (string, error) {
	bad := perr.Kind(perr.ErrorCodeValidation, domain.ReasonInvalidProofEncoding, "payment proof is not base64 encoded JSON")
	cred = strings.TrimSpace(cred)
	if cred == "" || len(cred) > 4096 {
		return "", bad
	}
	raw, err := base64.StdEncoding.DecodeString(cred)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(cred); err != nil {
			return "", bad
		}
	}
	var p proofBody
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.Reference) == "" {
		return "", bad
	}
	return strings.TrimSpace(p.Reference), nil
}

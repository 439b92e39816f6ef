package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"paygate/internal/core/accesstoken"
	"paygate/internal/core/feesplit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/services/api/paywall/domain"
	replay "paygate/internal/services/replay/domain"
	verify "paygate/internal/services/verify/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipient = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

type fakeVerifier struct {
	mu    sync.Mutex
	guard *memGuard
	reqs  []verify.Request
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, req verify.Request) (verify.VerifiedPayment, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.err != nil {
		return verify.VerifiedPayment{}, f.err
	}
	if first, _ := f.guard.Record(ctx, replay.Record{Reference: req.Reference, Amount: req.Amount}); !first {
		return verify.VerifiedPayment{}, verify.AlreadyUsed()
	}
	return verify.VerifiedPayment{Reference: req.Reference, Amount: req.Amount, Recipient: req.Recipient, Sender: "Payer111"}, nil
}

type memGuard struct {
	mu   sync.Mutex
	refs map[string]bool
}

func (g *memGuard) IsUsed(_ context.Context, ref string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refs[ref], nil
}

func (g *memGuard) Record(_ context.Context, rec replay.Record) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refs[rec.Reference] {
		return false, nil
	}
	g.refs[rec.Reference] = true
	return true, nil
}

type fakeGrants struct {
	mu     sync.Mutex
	grants []domain.Grant
	err    error
}

func (f *fakeGrants) Append(_ context.Context, g domain.Grant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, g)
	return f.err
}

type fixture struct {
	svc      *Svc
	verifier *fakeVerifier
	guard    *memGuard
	grants   *fakeGrants
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	guard := &memGuard{refs: map[string]bool{}}
	v := &fakeVerifier{guard: guard}
	grants := &fakeGrants{}
	tokens, err := accesstoken.New([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	fees, err := feesplit.New(250)
	require.NoError(t, err)
	svc := New(Deps{
		Verifier: v,
		Guard:    guard,
		Tokens:   tokens,
		Fees:     fees,
		Grants:   grants,
		Clock:    func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) },
		Memo:     func() string { return "memo-1" },
	}, Config{
		Price:                50_000,
		Currency:             "USDC",
		Network:              "solana-devnet",
		Recipient:            recipient,
		VerificationEndpoint: "/api/v1/paywall/verify",
	})
	return fixture{svc: svc, verifier: v, guard: guard, grants: grants}
}

func proof(ref string) string {
	return base64.StdEncoding.EncodeToString([]byte(`{"reference":"` + ref + `"}`))
}

func request(auth string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/entities/e1/reputation", nil)
	if auth != "" {
		r.Header.Set("Authorization", auth)
	}
	return r
}

func TestTerms(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	assert.Equal(t, domain.Challenge{
		ProtocolVersion:      domain.ProtocolVersion,
		Price:                50_000,
		Currency:             "USDC",
		Network:              "solana-devnet",
		Recipient:            recipient,
		VerificationEndpoint: "/api/v1/paywall/verify",
		Memo:                 "memo-1",
	}, f.svc.Terms(request("")))
}

func TestAuthorize_NoProofIsChallenged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	r := request("")
	_, err := f.svc.Authorize(r)
	require.Error(t, err)

	status, body := f.svc.Challenge(r, err)
	assert.Equal(t, http.StatusPaymentRequired, status)
	c := body.(domain.Challenge)
	require.NotNil(t, c.Error)
	assert.Equal(t, domain.ReasonPaymentRequired, c.Error.Reason)
	assert.Equal(t, recipient, c.Recipient)
	assert.Empty(t, f.verifier.reqs)
}

func TestAuthorize_ProofGrantsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := strings.Repeat("R", 64)

	payer, err := f.svc.Authorize(request("x402 " + proof(ref)))
	require.NoError(t, err)
	assert.Equal(t, "Payer111", payer)
	require.Len(t, f.verifier.reqs, 1)
	assert.Equal(t, verify.Request{Reference: ref, Recipient: recipient, Amount: 50_000}, f.verifier.reqs[0])

	f.svc.Wait()
	require.Len(t, f.grants.grants, 1)
	g := f.grants.grants[0]
	assert.Equal(t, domain.ViaProof, g.Via)
	assert.EqualValues(t, 48_750, g.AgentShare)
	assert.EqualValues(t, 1_250, g.PlatformFee)
	assert.Equal(t, "GET /api/v1/entities/e1/reputation", g.Route)

	r := request("X402 " + proof(ref))
	_, err = f.svc.Authorize(r)
	require.Error(t, err)
	status, body := f.svc.Challenge(r, err)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, verify.ReasonAlreadyUsed, body.(domain.Challenge).Error.Reason)
}

func TestAuthorize_BadProofEncoding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for _, auth := range []string{
		"x402 %%%not-base64",
		"x402 " + base64.StdEncoding.EncodeToString([]byte("not json")),
		"x402 " + base64.StdEncoding.EncodeToString([]byte(`{"reference":""}`)),
		"basic dXNlcjpwYXNz",
	} {
		r := request(auth)
		_, err := f.svc.Authorize(r)
		require.Error(t, err, auth)
		assert.Equal(t, domain.ReasonInvalidProofEncoding, perr.ReasonOf(err), auth)
		status, _ := f.svc.Challenge(r, err)
		assert.Equal(t, http.StatusBadRequest, status, auth)
	}
	assert.Empty(t, f.verifier.reqs)
}

func TestAuthorize_UnpaddedProofAccepted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := strings.Repeat("U", 63)
	raw := base64.RawStdEncoding.EncodeToString([]byte(`{"reference":"` + ref + `"}`))
	_, err := f.svc.Authorize(request("x402 " + raw))
	require.NoError(t, err)
}

func TestAuthorize_UpstreamOutageKeepsStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.verifier.err = perr.Kind(perr.ErrorCodeUnavailable, verify.ReasonUpstreamUnavailable, "ledger unavailable")
	r := request("x402 " + proof(strings.Repeat("D", 64)))
	_, err := f.svc.Authorize(r)
	status, body := f.svc.Challenge(r, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, verify.ReasonUpstreamUnavailable, body.(domain.Challenge).Error.Reason)
}

func TestVerify_SplitsAndIssuesToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := strings.Repeat("V", 64)

	out, err := f.svc.Verify(context.Background(), domain.VerifyRequest{Reference: ref, Recipient: recipient, Amount: 50_000})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, domain.Verification{Amount: 50_000, AgentShare: 48_750, PlatformFee: 1_250, Sender: "Payer111"}, out.Verification)

	p, err := f.svc.deps.Tokens.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, ref, p.Reference)

	f.svc.Wait()
	require.Len(t, f.grants.grants, 1)
	assert.Equal(t, domain.ViaVerify, f.grants.grants[0].Via)
}

func TestVerify_RejectsAmountOutOfRange(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for _, amt := range []int64{0, -1, domain.MaxAmount + 1} {
		_, err := f.svc.Verify(context.Background(), domain.VerifyRequest{Reference: strings.Repeat("A", 64), Recipient: recipient, Amount: amt})
		assert.Equal(t, domain.ReasonInvalidAmount, perr.ReasonOf(err))
	}
	assert.Empty(t, f.verifier.reqs)
}

func TestVerify_HoldsClientToAdvertisedTerms(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		in     domain.VerifyRequest
		reason string
		field  string
	}{
		"other recipient": {
			in:     domain.VerifyRequest{Reference: strings.Repeat("R", 64), Recipient: "11111111111111111111111111111111", Amount: 50_000},
			reason: domain.ReasonInvalidRecipientAddress, field: "recipient",
		},
		"below price": {
			in:     domain.VerifyRequest{Reference: strings.Repeat("P", 64), Recipient: recipient, Amount: 1},
			reason: domain.ReasonInvalidAmount, field: "amount",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			out, err := f.svc.Verify(context.Background(), tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.reason, perr.ReasonOf(err))
			assert.Equal(t, http.StatusBadRequest, perr.HTTPStatus(err))
			e, ok := perr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, e.Field())
			assert.Empty(t, out.AccessToken)

			f.svc.Wait()
			assert.Empty(t, f.verifier.reqs, "rejected before the verifier runs")
			assert.Empty(t, f.guard.refs, "reference stays unconsumed")
			assert.Empty(t, f.grants.grants)
		})
	}
}

func TestVerify_OverpaymentAboveAdvertisedPriceAccepted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	out, err := f.svc.Verify(context.Background(), domain.VerifyRequest{Reference: strings.Repeat("O", 64), Recipient: recipient, Amount: 60_000})
	require.NoError(t, err)
	assert.EqualValues(t, 60_000, out.Verification.Amount)
}

func TestAuthorize_BearerToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := strings.Repeat("T", 64)
	out, err := f.svc.Verify(context.Background(), domain.VerifyRequest{Reference: ref, Recipient: recipient, Amount: 50_000})
	require.NoError(t, err)

	_, err = f.svc.Authorize(request("Bearer " + out.AccessToken))
	require.NoError(t, err)
	assert.Len(t, f.verifier.reqs, 1, "token reuse does not verify again")

	// swept reference retires the token
	f.guard.mu.Lock()
	delete(f.guard.refs, ref)
	f.guard.mu.Unlock()
	r := request("Bearer " + out.AccessToken)
	_, err = f.svc.Authorize(r)
	require.Error(t, err)
	assert.Equal(t, accesstoken.ReasonTokenInvalid, perr.ReasonOf(err))
	status, _ := f.svc.Challenge(r, err)
	assert.Equal(t, http.StatusPaymentRequired, status)
}

func TestAuthorize_BearerForOtherTermsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ref := strings.Repeat("W", 64)
	f.guard.refs[ref] = true
	cheap, _, err := f.svc.deps.Tokens.Issue(ref, 10, recipient)
	require.NoError(t, err)

	_, err = f.svc.Authorize(request("Bearer " + cheap))
	assert.Equal(t, accesstoken.ReasonTokenInvalid, perr.ReasonOf(err))

	_, err = f.svc.Authorize(request("Bearer not.a-token"))
	assert.Equal(t, accesstoken.ReasonTokenInvalid, perr.ReasonOf(err))
}

func TestGrantLogFailureDoesNotFailGrant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.grants.err = errors.New("clickhouse down")
	_, err := f.svc.Authorize(request("x402 " + proof(strings.Repeat("G", 64))))
	require.NoError(t, err)
	f.svc.Wait()
	assert.Len(t, f.grants.grants, 1)
}

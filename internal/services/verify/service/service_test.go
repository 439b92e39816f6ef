package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"paygate/internal/adapters/ledger"
	perr "paygate/internal/platform/errors"
	replay "paygate/internal/services/replay/domain"
	"paygate/internal/services/verify/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recipient = "RecipientOwner1111111111111111111111111111"
	mint      = "USDCmint11111111111111111111111111111111111"
)

var goodRef = strings.Repeat("5", 64)

type fakeLedger struct {
	tx    ledger.Transaction
	err   error
	calls atomic.Int32
}

func (f *fakeLedger) GetTransaction(_ context.Context, ref string) (ledger.Transaction, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ledger.Transaction{}, f.err
	}
	tx := f.tx
	tx.Reference = ref
	return tx, nil
}

type memGuard struct {
	mu   sync.Mutex
	recs map[string]replay.Record
}

func newMemGuard() *memGuard { return &memGuard{recs: map[string]replay.Record{}} }

func (g *memGuard) IsUsed(_ context.Context, ref string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.recs[ref]
	return ok, nil
}

func (g *memGuard) Record(_ context.Context, rec replay.Record) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.recs[rec.Reference]; ok {
		return false, nil
	}
	g.recs[rec.Reference] = rec
	return true, nil
}

func bal(idx int, owner string, amount uint64) ledger.TokenBalance {
	return ledger.TokenBalance{AccountIndex: idx, Mint: mint, Owner: owner, Amount: amount}
}

func scenarioTx() ledger.Transaction {
	return ledger.Transaction{
		Slot: 10,
		Pre:  []ledger.TokenBalance{bal(2, "Payer", 1000)},
		Post: []ledger.TokenBalance{bal(5, recipient, 1000), bal(2, "Payer", 0)},
	}
}

func newSvc(l domain.LedgerPort, g replay.GuardPort, mode domain.Mode) *Svc {
	return New(l, g, Config{Mode: mode, Mint: mint})
}

func TestVerify_ScenarioMatchesByAccountIndex(t *testing.T) {
	t.Parallel()
	l := &fakeLedger{tx: scenarioTx()}
	g := newMemGuard()
	s := newSvc(l, g, domain.ModeProduction)

	vp, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.VerifiedPayment{Reference: goodRef, Amount: 1000, Recipient: recipient, Sender: "Payer"}, vp)

	used, _ := g.IsUsed(context.Background(), goodRef)
	assert.True(t, used)
}

func TestVerify_SecondUseIsRejectedWithoutLedgerCall(t *testing.T) {
	t.Parallel()
	l := &fakeLedger{tx: scenarioTx()}
	s := newSvc(l, newMemGuard(), domain.ModeProduction)
	req := domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000}

	_, err := s.Verify(context.Background(), req)
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), req)
	require.Error(t, err)
	assert.True(t, perr.IsReason(err, domain.ReasonAlreadyUsed))
	assert.Equal(t, 402, perr.HTTPStatus(err))
	assert.EqualValues(t, 1, l.calls.Load())
}

func TestVerify_ConcurrentSameReferenceGrantsOnce(t *testing.T) {
	t.Parallel()
	s := newSvc(&fakeLedger{tx: scenarioTx()}, newMemGuard(), domain.ModeProduction)

	const n = 16
	var (
		ok   atomic.Int32
		used atomic.Int32
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000})
			switch {
			case err == nil:
				ok.Add(1)
			case perr.IsReason(err, domain.ReasonAlreadyUsed):
				used.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, used.Load())
}

func TestVerify_OrderIndependent(t *testing.T) {
	t.Parallel()
	a := ledger.Transaction{
		Pre:  []ledger.TokenBalance{bal(1, "Payer", 900), bal(3, recipient, 10), bal(4, recipient, 0)},
		Post: []ledger.TokenBalance{bal(1, "Payer", 300), bal(3, recipient, 410), bal(4, recipient, 200)},
	}
	b := ledger.Transaction{
		Pre:  []ledger.TokenBalance{bal(4, recipient, 0), bal(1, "Payer", 900), bal(3, recipient, 10)},
		Post: []ledger.TokenBalance{bal(4, recipient, 200), bal(3, recipient, 410), bal(1, "Payer", 300)},
	}
	ta := matchBalances(a.Pre, a.Post, mint, recipient)
	tb := matchBalances(b.Pre, b.Post, mint, recipient)
	assert.Equal(t, ta, tb)
	assert.EqualValues(t, 600, ta.increase)
	assert.Equal(t, "Payer", ta.sender)
}

func TestMatchBalances_FiltersMintAndOwner(t *testing.T) {
	t.Parallel()
	other := ledger.TokenBalance{AccountIndex: 7, Mint: "OtherMint", Owner: recipient, Amount: 5000}
	pre := []ledger.TokenBalance{bal(2, "Payer", 100)}
	post := []ledger.TokenBalance{bal(2, "Payer", 0), bal(5, "SomeoneElse", 100), other}
	got := matchBalances(pre, post, mint, recipient)
	assert.Zero(t, got.increase)
	assert.Equal(t, "Payer", got.sender)

	// a transfer of some other token to the recipient never pays
	got = matchBalances(pre, []ledger.TokenBalance{other}, "", recipient)
	assert.Zero(t, got.increase)
}

func TestNew_RequiresMintOutsideDevelopment(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, "verify.Service requires a token mint outside development mode", func() {
		New(&fakeLedger{}, newMemGuard(), Config{Mint: " "})
	})
	assert.NotPanics(t, func() { New(&fakeLedger{}, newMemGuard(), Config{Mode: domain.ModeDevelopment}) })
}

func TestVerify_OtherMintDoesNotPay(t *testing.T) {
	t.Parallel()
	tx := ledger.Transaction{
		Pre: []ledger.TokenBalance{{AccountIndex: 2, Mint: "AttackerJunkMint", Owner: "Attacker", Amount: 50_000}},
		Post: []ledger.TokenBalance{
			{AccountIndex: 2, Mint: "AttackerJunkMint", Owner: "Attacker", Amount: 0},
			{AccountIndex: 5, Mint: "AttackerJunkMint", Owner: recipient, Amount: 50_000},
		},
	}
	g := newMemGuard()
	_, err := newSvc(&fakeLedger{tx: tx}, g, domain.ModeProduction).
		Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 50_000})
	require.Error(t, err)
	assert.Equal(t, domain.ReasonInsufficientTransfer, perr.ReasonOf(err))
	assert.Empty(t, g.recs)
}

func TestMatchBalances_ClosedAccountIsSender(t *testing.T) {
	t.Parallel()
	pre := []ledger.TokenBalance{bal(2, "Closer", 500)}
	post := []ledger.TokenBalance{bal(6, recipient, 500)}
	got := matchBalances(pre, post, mint, recipient)
	assert.EqualValues(t, 500, got.increase)
	assert.Equal(t, "Closer", got.sender)
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		ledger *fakeLedger
		req    domain.Request
		reason string
		status int
		calls  int32
	}{
		{
			name:   "short reference",
			ledger: &fakeLedger{},
			req:    domain.Request{Reference: "abc", Recipient: recipient, Amount: 1},
			reason: domain.ReasonInvalidReferenceFormat, status: 400,
		},
		{
			name:   "whitespace inside reference",
			ledger: &fakeLedger{},
			req:    domain.Request{Reference: strings.Repeat("a", 20) + " " + strings.Repeat("b", 20), Recipient: recipient, Amount: 1},
			reason: domain.ReasonInvalidReferenceFormat, status: 400,
		},
		{
			name:   "zero amount",
			ledger: &fakeLedger{},
			req:    domain.Request{Reference: goodRef, Recipient: recipient},
			reason: domain.ReasonInvalidAmount, status: 400,
		},
		{
			name:   "missing recipient",
			ledger: &fakeLedger{},
			req:    domain.Request{Reference: goodRef, Amount: 1},
			reason: domain.ReasonInvalidRecipientAddress, status: 400,
		},
		{
			name:   "not found",
			ledger: &fakeLedger{err: perr.Kind(perr.ErrorCodeNotFound, ledger.ReasonNotFound, "ledger getTransaction not found")},
			req:    domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1},
			reason: domain.ReasonNotFound, status: 404, calls: 1,
		},
		{
			name:   "upstream down",
			ledger: &fakeLedger{err: perr.Kind(perr.ErrorCodeUnavailable, ledger.ReasonUpstreamUnavailable, "dial tcp: refused")},
			req:    domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1},
			reason: domain.ReasonUpstreamUnavailable, status: 503, calls: 1,
		},
		{
			name:   "failed transaction",
			ledger: &fakeLedger{tx: ledger.Transaction{Failed: true}},
			req:    domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1},
			reason: domain.ReasonTransactionFailed, status: 402, calls: 1,
		},
		{
			name:   "insufficient",
			ledger: &fakeLedger{tx: scenarioTx()},
			req:    domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1001},
			reason: domain.ReasonInsufficientTransfer, status: 402, calls: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := newMemGuard()
			_, err := newSvc(tc.ledger, g, domain.ModeProduction).Verify(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.reason, perr.ReasonOf(err))
			assert.Equal(t, tc.status, perr.HTTPStatus(err))
			assert.Equal(t, tc.calls, tc.ledger.calls.Load())
			assert.Empty(t, g.recs, "failures never consume the reference")
		})
	}
}

func TestVerify_InsufficientCarriesAmounts(t *testing.T) {
	t.Parallel()
	s := newSvc(&fakeLedger{tx: scenarioTx()}, newMemGuard(), domain.ModeProduction)
	_, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 2500})
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]int64{"observed": 1000, "required": 2500}, e.Details())
}

func TestVerify_UpstreamTextDoesNotLeak(t *testing.T) {
	t.Parallel()
	l := &fakeLedger{err: perr.Kind(perr.ErrorCodeUnavailable, ledger.ReasonUpstreamUnavailable, "secret-host:8899 refused")}
	_, err := newSvc(l, newMemGuard(), domain.ModeProduction).
		Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1})
	require.Error(t, err)
	assert.NotContains(t, perr.WireFrom(err).Message, "secret-host")
}

func TestVerify_OverpaymentAccepted(t *testing.T) {
	t.Parallel()
	s := newSvc(&fakeLedger{tx: scenarioTx()}, newMemGuard(), domain.ModeProduction)
	vp, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 400})
	require.NoError(t, err)
	assert.EqualValues(t, 1000, vp.Amount)
}

func TestVerify_MaxAge(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tx := scenarioTx()
	tx.BlockTime = now.Add(-8 * 24 * time.Hour).Unix()
	s := New(&fakeLedger{tx: tx}, newMemGuard(), Config{Mint: mint, MaxAge: 7 * 24 * time.Hour, Clock: func() time.Time { return now }})
	_, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000})
	assert.True(t, perr.IsReason(err, domain.ReasonTransactionExpired))
}

func TestVerify_UnknownBlockTimeFailsClosed(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	g := newMemGuard()
	s := New(&fakeLedger{tx: scenarioTx()}, g, Config{Mint: mint, MaxAge: time.Hour, Clock: func() time.Time { return now }})
	_, err := s.Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000})
	require.Error(t, err)
	assert.True(t, perr.IsReason(err, domain.ReasonTransactionExpired))
	assert.Empty(t, g.recs)

	// without a max age the block time is not consulted
	_, err = newSvc(&fakeLedger{tx: scenarioTx()}, newMemGuard(), domain.ModeProduction).
		Verify(context.Background(), domain.Request{Reference: goodRef, Recipient: recipient, Amount: 1000})
	assert.NoError(t, err)
}

func TestVerify_DevBypass(t *testing.T) {
	t.Parallel()
	ref := DevPrefix + strings.Repeat("x", 40)
	req := domain.Request{Reference: ref, Recipient: recipient, Amount: 777}

	t.Run("production ignores the prefix", func(t *testing.T) {
		t.Parallel()
		l := &fakeLedger{err: perr.Kind(perr.ErrorCodeNotFound, ledger.ReasonNotFound, "nope")}
		_, err := newSvc(l, newMemGuard(), domain.ModeProduction).Verify(context.Background(), req)
		assert.True(t, perr.IsReason(err, domain.ReasonNotFound))
		assert.EqualValues(t, 1, l.calls.Load())
	})

	t.Run("development skips the ledger but still records", func(t *testing.T) {
		t.Parallel()
		l := &fakeLedger{}
		s := newSvc(l, newMemGuard(), domain.ModeDevelopment)
		vp, err := s.Verify(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, DevSender, vp.Sender)
		assert.EqualValues(t, 777, vp.Amount)
		assert.Zero(t, l.calls.Load())

		_, err = s.Verify(context.Background(), req)
		assert.True(t, perr.IsReason(err, domain.ReasonAlreadyUsed))
	})
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.ModeDevelopment, domain.ParseMode(" Development "))
	assert.Equal(t, domain.ModeProduction, domain.ParseMode("demo"))
	assert.Equal(t, domain.ModeProduction, domain.ParseMode(""))
}

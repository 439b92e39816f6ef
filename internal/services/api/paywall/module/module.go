// Package module wires the payment gate into the API using modkit
package module

import (
	"context"
	"strings"
	"time"

	"paygate/internal/adapters/ledger"
	"paygate/internal/adapters/notify"
	"paygate/internal/core/accesstoken"
	"paygate/internal/core/feesplit"
	modkit "paygate/internal/modkit"
	"paygate/internal/modkit/httpkit"
	"paygate/internal/platform/logger"
	"paygate/internal/platform/net/http/bind"
	"paygate/internal/services/api/paywall/domain"
	paywallhttp "paygate/internal/services/api/paywall/http"
	paywallrepo "paygate/internal/services/api/paywall/repo"
	paywallsvc "paygate/internal/services/api/paywall/service"
	replay "paygate/internal/services/replay/domain"
	verifydom "paygate/internal/services/verify/domain"
	verifysvc "paygate/internal/services/verify/service"

	"github.com/rs/zerolog"
)

// Module implements the paywall API module
type Module struct {
	b     modkit.Built
	ports Ports
	limit httpkit.RateLimitOptions

	svc    *paywallsvc.Svc
	grants *paywallrepo.CH
}

// Needs declares the ports this module requires from other modules
type Needs struct {
	Guard replay.GuardPort

	// Ledger defaults to a JSON-RPC client configured from LEDGER_
	Ledger verifydom.LedgerPort
	Clock  func() time.Time
}

// Ports is what the paywall exposes for cross wiring
type Ports struct {
	Gate    domain.GatePort
	Payment httpkit.PaymentPort
}

// New constructs the paywall module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith constructs the module from explicit options
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("paywall"),
		modkit.WithPrefix("/paywall"),
	}, opts...)...)

	needs, _ := modkit.Needs[Needs](b)
	if needs.Guard == nil {
		panic("paywall module requires the replay Guard port (from services/replay)")
	}
	mode := verifydom.ParseMode(o.Mode)
	if !bind.IsAccountAddress(o.Recipient) {
		panic("paywall module requires PAYGATE_RECIPIENT to be a base58 account address")
	}
	if mode == verifydom.ModeProduction && strings.TrimSpace(o.Mint) == "" {
		panic("paywall module requires PAYGATE_MINT in production mode")
	}
	if needs.Ledger == nil {
		lo := ledger.OptionsFromConfig(deps.Cfg)
		needs.Ledger = ledger.NewClient(lo)
	}
	if needs.Clock == nil {
		needs.Clock = time.Now
	}
	fees, err := feesplit.New(o.FeeBps)
	if err != nil {
		panic("paywall module: " + err.Error())
	}
	tokens, err := accesstoken.New(tokenSecret(o.TokenSecret), accesstoken.WithClock(needs.Clock), accesstoken.WithMaxAge(o.TokenMaxAge))
	if err != nil {
		panic("paywall module: " + err.Error())
	}

	verifier := verifysvc.New(needs.Ledger, needs.Guard, verifysvc.Config{
		Mode:            mode,
		Mint:            o.Mint,
		MinReferenceLen: o.MinReferenceLen,
		MaxAge:          o.TokenMaxAge,
		Clock:           needs.Clock,
	})

	grants := paywallrepo.NewCH(deps.CH)
	var grantLog domain.GrantLogPort
	if grants != nil {
		grantLog = grants
	}

	svc := paywallsvc.New(paywallsvc.Deps{
		Verifier: verifier,
		Guard:    needs.Guard,
		Tokens:   tokens,
		Fees:     fees,
		Notifier: notify.New(notify.OptionsFromConfig(deps.Cfg)),
		Grants:   grantLog,
		Clock:    needs.Clock,
	}, paywallsvc.Config{
		Price:                o.Price,
		Currency:             o.Currency,
		Network:              o.Network,
		Recipient:            o.Recipient,
		VerificationEndpoint: httpkit.V1Prefix + b.Prefix + "/verify",
		Scheme:               o.Scheme,
	})

	m := &Module{
		b:      b,
		svc:    svc,
		grants: grants,
		ports:  Ports{Gate: svc, Payment: svc},
		limit:  httpkit.RateLimitOptions{RPS: o.VerifyRPS, Burst: o.VerifyBurst},
	}

	lvl := zerolog.InfoLevel
	if mode == verifydom.ModeDevelopment {
		lvl = zerolog.WarnLevel
	}
	logger.Named("paywall").WithLevel(lvl).
		Str("mode", string(mode)).
		Int("fee_bps", fees.Bps()).
		Uint64("price", o.Price).
		Bool("grant_log", grants != nil).
		Msg("payment gate ready")
	return m
}

// tokenSecret returns the configured secret or a fresh one that dies with the process
func tokenSecret(configured string) []byte {
	if len(configured) >= accesstoken.MinSecretLen {
		return []byte(configured)
	}
	if configured != "" {
		panic("PAYGATE_TOKEN_SECRET must be at least 32 bytes")
	}
	secret, err := accesstoken.GenerateSecret()
	if err != nil {
		panic("paywall module: " + err.Error())
	}
	logger.Named("paywall").Warn().Msg("PAYGATE_TOKEN_SECRET not set; generated one, tokens will not survive a restart")
	return secret
}

// EnsureSchema creates the grant log table when analytics are enabled
func (m *Module) EnsureSchema(ctx context.Context) error {
	if m.grants == nil {
		return nil
	}
	return m.grants.EnsureSchema(ctx)
}

// Wait drains in flight grant side effects
func (m *Module) Wait() { m.svc.Wait() }

// MountRoutes mounts the challenge, verify and protected resource routes
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(sub httpkit.Router) {
		paywallhttp.Register(sub, m.svc, paywallhttp.Options{VerifyLimit: m.limit})
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the module ports (Gate, Payment)
func (m *Module) Ports() any { return m.ports }

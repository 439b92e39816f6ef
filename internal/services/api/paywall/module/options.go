package module

import (
	"time"

	"paygate/internal/platform/config"
	replaysvc "paygate/internal/services/replay/service"
	verifysvc "paygate/internal/services/verify/service"
)

// Options controls the gate. Values may also be read from env
type Options struct {
	Mode      string
	Recipient string
	Mint      string
	Price     uint64
	Currency  string
	Network   string
	Scheme    string
	FeeBps    int

	TokenSecret string
	TokenMaxAge time.Duration

	MinReferenceLen int
	VerifyRPS       float64
	VerifyBurst     int
}

// FromConfig reads options using the PAYGATE_ and RATELIMIT_ prefixes
func FromConfig(cfg config.Conf) Options {
	pc := cfg.Prefix("PAYGATE_")
	rl := cfg.Prefix("RATELIMIT_")
	price := pc.MayInt64("PRICE", 50_000)
	if price <= 0 {
		price = 50_000
	}
	return Options{
		Mode:            pc.MayEnum("MODE", "production", "production", "development"),
		Recipient:       pc.MayString("RECIPIENT", ""),
		Mint:            pc.MayString("MINT", ""),
		Price:           uint64(price),
		Currency:        pc.MayString("CURRENCY", "USDC"),
		Network:         pc.MayString("NETWORK", "solana-mainnet"),
		Scheme:          pc.MayString("PROOF_SCHEME", "x402"),
		FeeBps:          pc.MayIntRange("FEE_BPS", 250, 0, 10_000),
		TokenSecret:     pc.MayString("TOKEN_SECRET", ""),
		TokenMaxAge:     pc.MayDuration("REPLAY_TTL", replaysvc.DefaultTTL),
		MinReferenceLen: pc.MayIntRange("MIN_REFERENCE_LEN", verifysvc.DefaultMinReferenceLen, verifysvc.DefaultMinReferenceLen, verifysvc.MaxReferenceLen),
		VerifyRPS:       rl.MayFloat64("VERIFY_RPS", 2),
		VerifyBurst:     rl.MayInt("VERIFY_BURST", 5),
	}
}

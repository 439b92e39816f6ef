// Package feesplit divides a payment between the agent and the platform
package feesplit

import (
	"math/big"

	perr "paygate/internal/platform/errors"
)

// MaxBps is 100 percent in basis points
const MaxBps = 10_000

// Split is the outcome of dividing Total
// AgentShare + PlatformFee == Total and PlatformFee rounds down
type Split struct {
	Total          uint64 `json:"total"`
	PlatformFeeBps uint16 `json:"platform_fee_bps"`
	AgentShare     uint64 `json:"agent_share"`
	PlatformFee    uint64 `json:"platform_fee"`
}

// ValidateBps rejects basis points outside [0, MaxBps]
func ValidateBps(bps int) error {
	if bps < 0 || bps > MaxBps {
		return perr.WithField(perr.InvalidArgf("fee bps %d out of range [0,%d]", bps, MaxBps), "fee_bps")
	}
	return nil
}

// Compute splits total by bps
// the product is taken in big.Int so totals near MaxUint64 do not overflow
func Compute(total uint64, bps int) (Split, error) {
	if err := ValidateBps(bps); err != nil {
		return Split{}, err
	}
	fee := new(big.Int).SetUint64(total)
	fee.Mul(fee, big.NewInt(int64(bps)))
	fee.Quo(fee, big.NewInt(MaxBps))

	pf := fee.Uint64()
	return Split{
		Total:          total,
		PlatformFeeBps: uint16(bps),
		AgentShare:     total - pf,
		PlatformFee:    pf,
	}, nil
}

// Calculator holds a validated fee rate
type Calculator struct {
	bps int
}

// New validates bps once so Split cannot fail later
func New(bps int) (Calculator, error) {
	if err := ValidateBps(bps); err != nil {
		return Calculator{}, err
	}
	return Calculator{bps: bps}, nil
}

// Bps returns the configured rate
func (c Calculator) Bps() int { return c.bps }

// Split divides total at the configured rate
func (c Calculator) Split(total uint64) Split {
	s, _ := Compute(total, c.bps)
	return s
}

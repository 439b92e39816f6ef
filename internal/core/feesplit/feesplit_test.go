package feesplit

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "paygate/internal/platform/errors"
)

func TestCompute_KnownValue(t *testing.T) {
	s, err := Compute(50_000, 250)
	require.NoError(t, err)
	assert.Equal(t, Split{Total: 50_000, PlatformFeeBps: 250, AgentShare: 48_750, PlatformFee: 1_250}, s)
}

func TestCompute_Edges(t *testing.T) {
	cases := []struct {
		total     uint64
		bps       int
		fee, rest uint64
	}{
		{0, 250, 0, 0},
		{1, 250, 0, 1},
		{39, 250, 0, 39},
		{40, 250, 1, 39},
		{100, 0, 0, 100},
		{100, MaxBps, 100, 0},
		{math.MaxUint64, MaxBps, math.MaxUint64, 0},
		{math.MaxUint64, 1, math.MaxUint64 / MaxBps, math.MaxUint64 - math.MaxUint64/MaxBps},
	}
	for _, c := range cases {
		s, err := Compute(c.total, c.bps)
		require.NoError(t, err)
		assert.Equal(t, c.fee, s.PlatformFee, "total=%d bps=%d", c.total, c.bps)
		assert.Equal(t, c.rest, s.AgentShare, "total=%d bps=%d", c.total, c.bps)
	}
}

func TestCompute_SumAndFloorProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		total := rng.Uint64N(1 << 50)
		bps := rng.IntN(MaxBps + 1)
		s, err := Compute(total, bps)
		require.NoError(t, err)
		assert.Equal(t, total, s.AgentShare+s.PlatformFee)
		assert.Equal(t, total*uint64(bps)/MaxBps, s.PlatformFee)
		assert.GreaterOrEqual(t, s.AgentShare*MaxBps, total*uint64(MaxBps-bps))
	}
}

func TestCompute_RejectsOutOfRange(t *testing.T) {
	for _, bps := range []int{-1, MaxBps + 1, 1 << 20} {
		_, err := Compute(100, bps)
		require.Error(t, err)
		assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

		_, err = New(bps)
		assert.Error(t, err)
	}
}

func TestCalculator(t *testing.T) {
	c, err := New(250)
	require.NoError(t, err)
	assert.Equal(t, 250, c.Bps())
	assert.Equal(t, uint64(1_250), c.Split(50_000).PlatformFee)
}

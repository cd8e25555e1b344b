package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStressBalance(t *testing.T) {
	for s, want := range map[string]StressBalance{
		"sia":     StressBalanceSIA,
		"ssa":     StressBalanceSSA,
		"sia+ssa": StressBalanceSIASSA,
	} {
		got, err := ParseStressBalance(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, s, got.String())
	}

	_, err := ParseStressBalance("hybrid")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParseHydrology(t *testing.T) {
	for s, want := range map[string]Hydrology{
		"null":        HydrologyNull,
		"routing":     HydrologyRouting,
		"distributed": HydrologyDistributed,
	} {
		got, err := ParseHydrology(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, s, got.String())
	}

	_, err := ParseHydrology("magma")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestUseSSAVelocity(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.UseSSAVelocity(StressBalanceSIA))
	assert.True(t, cfg.UseSSAVelocity(StressBalanceSSA))
	assert.True(t, cfg.UseSSAVelocity(StressBalanceSIASSA))
}

func TestSuperposeWeightLimits(t *testing.T) {
	// At rest the SIA fraction is 1; it decays monotonically with speed
	// and saturates toward 0.
	assert.Equal(t, 1.0, superposeWeight(0))

	prev := 1.0
	for _, speed := range []float64{1e-7, 1e-6, 1e-5, 1e-4} { // m/s
		w := superposeWeight(speed * speed)
		assert.Less(t, w, prev)
		assert.Greater(t, w, 0.0)
		prev = w
	}
	assert.Less(t, superposeWeight(1.0), 0.01)
}

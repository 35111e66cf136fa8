package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaphop/router-core/token"
)

func weth() token.Token {
	return token.Token{ID: token.NewID(1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Symbol: "WETH", Decimals: 18}
}

func usdc() token.Token {
	return token.Token{ID: token.NewID(1, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Decimals: 6}
}

func TestPool_KeyOf_StableAcrossEquivalentCasing(t *testing.T) {
	a := KeyOf("Uniswap", weth().ID, usdc().ID, 3000)
	b := KeyOf("uniswap", weth().ID, usdc().ID, 3000)
	assert.Equal(t, a, b)
}

func TestPool_Validate(t *testing.T) {
	base := Pool{
		Exchange:   "uniswap",
		TokenA:     weth(),
		TokenB:     usdc(),
		FeeTierPpm: 3000,
		ReserveA:   big.NewInt(1000),
		ReserveB:   big.NewInt(2_000_000),
		Price:      2000,
		Liquidity:  4_000_000,
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, base.Validate())
	})

	t.Run("equal tokens", func(t *testing.T) {
		p := base
		p.TokenB = p.TokenA
		assert.ErrorIs(t, p.Validate(), ErrInvalidPool)
	})

	t.Run("negative reserve", func(t *testing.T) {
		p := base
		p.ReserveA = big.NewInt(-1)
		assert.ErrorIs(t, p.Validate(), ErrInvalidPool)
	})

	t.Run("fee tier out of range", func(t *testing.T) {
		p := base
		p.FeeTierPpm = FeeTierDivisor
		assert.ErrorIs(t, p.Validate(), ErrInvalidPool)
	})

	t.Run("nil reserves", func(t *testing.T) {
		p := base
		p.ReserveA = nil
		assert.ErrorIs(t, p.Validate(), ErrInvalidPool)
	})
}

func TestPool_FeeTier(t *testing.T) {
	p := Pool{FeeTierPpm: 3000}
	assert.InDelta(t, 0.003, p.FeeTier(), 1e-12)
}

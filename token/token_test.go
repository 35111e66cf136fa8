package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_NormalizesCase(t *testing.T) {
	a := NewID(1, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	b := NewID(1, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")

	assert.Equal(t, a, b)
}

func TestNewID_NonHexAddressLowercased(t *testing.T) {
	a := NewID(101, "  SoMeNonEvmAddress  ")
	require.Equal(t, "somenonevmaddress", a.Address)
	require.Equal(t, uint64(101), a.ChainID)
}

func TestNewID_DifferentChainsDiffer(t *testing.T) {
	a := NewID(1, "0xabc")
	b := NewID(2, "0xabc")
	assert.NotEqual(t, a, b)
}

func TestToken_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tok := Token{ID: NewID(1, "0xabc"), Symbol: "WETH", Decimals: 18}
		require.NoError(t, tok.Validate())
	})

	t.Run("decimals out of range", func(t *testing.T) {
		tok := Token{ID: NewID(1, "0xabc"), Symbol: "WETH", Decimals: 37}
		err := tok.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty address", func(t *testing.T) {
		tok := Token{ID: ID{ChainID: 1}, Symbol: "WETH", Decimals: 18}
		require.ErrorIs(t, tok.Validate(), ErrInvalidToken)
	})
}

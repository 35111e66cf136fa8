// Package pool models a single liquidity pool and its identity key. Fees
// are stored as parts per million over two reserves, under an arbitrary
// exchange tag, so the same shape covers exchanges beyond Uniswap V2 forks.
package pool

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/swaphop/router-core/token"
)

// FeeTierDivisor is the precision used for FeeTierPpm: a fee of 0.003 (0.3%)
// is stored as 3000 parts per million.
const FeeTierDivisor = 1_000_000

// Pool is a single liquidity pool between two tokens on one exchange.
type Pool struct {
	Exchange   string
	TokenA     token.Token
	TokenB     token.Token
	FeeTierPpm uint32
	ReserveA   *big.Int
	ReserveB   *big.Int
	Price      float64 // token_a priced in units of token_b; == ReserveB/ReserveA for constant-product pools
	Liquidity  float64 // USD-denominated TVL, used only for risk scoring
}

// Key identifies a pool independent of its mutable reserves/price: the
// (exchange, token_a, token_b, fee_tier) tuple.
type Key string

// KeyOf computes the identity key for a pool from its
// (exchange, token_a, token_b, fee_tier) tuple.
func KeyOf(exchange string, tokenA, tokenB token.ID, feeTierPpm uint32) Key {
	return Key(fmt.Sprintf("%s|%s|%s|%d", strings.ToLower(exchange), tokenA, tokenB, feeTierPpm))
}

// Key returns this pool's identity key.
func (p Pool) Key() Key {
	return KeyOf(p.Exchange, p.TokenA.ID, p.TokenB.ID, p.FeeTierPpm)
}

// FeeTier returns the fee as a fraction in [0, 1).
func (p Pool) FeeTier() float64 {
	return float64(p.FeeTierPpm) / float64(FeeTierDivisor)
}

// Validate enforces the Pool invariants: distinct
// tokens, non-negative reserves, a fee tier in [0, 1), and a non-negative
// price and liquidity. It does not enforce Price == ReserveB/ReserveA
// exactly: non-constant-product pools (e.g. Curve-style stable pools) are
// allowed to set price independently of their reserve ratio, so this is
// left to the caller supplying consistent data rather than checked here.
func (p Pool) Validate() error {
	if p.TokenA.ID == p.TokenB.ID {
		return fmt.Errorf("%w: token_a equals token_b (%s)", ErrInvalidPool, p.TokenA.ID)
	}
	if p.ReserveA == nil || p.ReserveB == nil {
		return fmt.Errorf("%w: nil reserve", ErrInvalidPool)
	}
	if p.ReserveA.Sign() < 0 || p.ReserveB.Sign() < 0 {
		return fmt.Errorf("%w: negative reserve", ErrInvalidPool)
	}
	if p.FeeTierPpm >= FeeTierDivisor {
		return fmt.Errorf("%w: fee_tier %d/%d not in [0,1)", ErrInvalidPool, p.FeeTierPpm, FeeTierDivisor)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidPool)
	}
	if p.Liquidity < 0 {
		return fmt.Errorf("%w: negative liquidity", ErrInvalidPool)
	}
	return nil
}

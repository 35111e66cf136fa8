package simulate

import (
	"fmt"
	"math/big"
	"strconv"
	"sync"
)

// feeDivisor matches pool.FeeTierDivisor's parts-per-million fee precision.
var feeDivisor = big.NewInt(1_000_000)

// calc holds the scratch *big.Int fields one amountOut call needs; calcPool
// recycles them, since this hop math runs once per route step per simulate
// call and would otherwise allocate four *big.Int per hop.
type calc struct {
	feeMultiplier   *big.Int
	amountInWithFee *big.Int
	numerator       *big.Int
	denominator     *big.Int
}

var calcPool = sync.Pool{
	New: func() any {
		return &calc{
			feeMultiplier:   new(big.Int),
			amountInWithFee: new(big.Int),
			numerator:       new(big.Int),
			denominator:     new(big.Int),
		}
	},
}

// amountOut computes the output amount for amountIn against a hop's
// reserves and fee tier (parts per million) under the constant-product
// invariant, rounding toward zero. When the
// reserves aren't both positive (an exotic, non-reserve-quoted pool such as
// a Curve stable pool), it falls back to the documented degenerate
// estimate `floor(amountIn * price)` instead of the constant-product
// formula.
func amountOut(amountIn, reserveIn, reserveOut *big.Int, feeTierPpm uint32, price float64) (*big.Int, error) {
	if amountIn == nil {
		return nil, fmt.Errorf("%w: nil amount", ErrInvalidAmount)
	}
	if amountIn.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return degenerateAmountOut(amountIn, price)
	}

	c := calcPool.Get().(*calc)
	defer calcPool.Put(c)

	c.feeMultiplier.Sub(feeDivisor, big.NewInt(int64(feeTierPpm)))
	c.amountInWithFee.Mul(amountIn, c.feeMultiplier)
	c.numerator.Mul(reserveOut, c.amountInWithFee)
	c.denominator.Mul(reserveIn, feeDivisor)
	c.denominator.Add(c.denominator, c.amountInWithFee)

	if c.denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero denominator", ErrDeadHop)
	}

	out := new(big.Int).Div(c.numerator, c.denominator)
	if out.Sign() <= 0 {
		return nil, ErrDeadHop
	}
	return out, nil
}

// degenerateAmountOut is the fallback used when a hop's reserves aren't
// both positive: `floor(amountIn * price)`, computed with big.Rat so the
// floor is exact rather than float64-approximate. A non-positive price
// means the hop has no usable quote at all, which is a dead hop like any
// other zero-output result.
func degenerateAmountOut(amountIn *big.Int, price float64) (*big.Int, error) {
	if price <= 0 {
		return nil, ErrDeadHop
	}
	priceRat := new(big.Rat).SetFloat64(price)
	if priceRat == nil {
		return nil, ErrDeadHop
	}
	scaled := new(big.Rat).Mul(new(big.Rat).SetInt(amountIn), priceRat)
	out := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	if out.Sign() <= 0 {
		return nil, ErrDeadHop
	}
	return out, nil
}

// minOut applies a slippage tolerance (a fraction in [0, 1)) to amountOut,
// returning the minimum acceptable output for that hop. The tolerance is read
// as its shortest decimal form (0.01 is exactly 1/100) and the product is
// computed with big.Rat, so the rounding is exact rather than
// float64-approximate.
func minOut(amountOut *big.Int, slippageTolerance float64) (*big.Int, error) {
	if slippageTolerance < 0 || slippageTolerance >= 1 {
		return nil, ErrInvalidSlippage
	}
	tolerance, ok := new(big.Rat).SetString(strconv.FormatFloat(slippageTolerance, 'g', -1, 64))
	if !ok {
		return nil, ErrInvalidSlippage
	}
	keep := new(big.Rat).Sub(big.NewRat(1, 1), tolerance)
	scaled := new(big.Rat).Mul(new(big.Rat).SetInt(amountOut), keep)
	// floor division: numerator / denominator, rounded toward zero.
	num := scaled.Num()
	den := scaled.Denom()
	return new(big.Int).Quo(num, den), nil
}

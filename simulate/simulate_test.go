package simulate

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaphop/router-core/costmodel"
	"github.com/swaphop/router-core/liquiditygraph"
	"github.com/swaphop/router-core/search"
	"github.com/swaphop/router-core/token"
)

func tok(addr string, decimals uint8) token.Token {
	return token.Token{ID: token.NewID(1, addr), Decimals: decimals}
}

var (
	weth = tok("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18)
	usdc = tok("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6)
	dai  = tok("0x6B175474E89094C44Da98b954EedeAC495271d0F", 18)
)

func directHop(from, to token.Token, exchange string, reserveIn, reserveOut *big.Int, feeTierPpm uint32, liquidity float64) search.Hop {
	edge := liquiditygraph.DirectedEdge{
		Exchange: exchange, From: from.ID, To: to.ID,
		ReserveIn: reserveIn, ReserveOut: reserveOut,
		FeeTierPpm: feeTierPpm, Liquidity: liquidity,
	}
	return search.Hop{Edge: edge}
}

func TestSimulate_TwoHopRoute_MatchesHandComputedAmounts(t *testing.T) {
	wethReserve := new(big.Int).Mul(big.NewInt(1000), pow10(18))
	usdcReserveB := new(big.Int).Mul(big.NewInt(2_000_000), pow10(6))
	usdcReserveA := new(big.Int).Mul(big.NewInt(5_000_000), pow10(6))
	daiReserve := new(big.Int).Mul(big.NewInt(5_000_000), pow10(18))

	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", wethReserve, usdcReserveB, 3000, 4_000_000_000),
		directHop(usdc, dai, "sushiswap", usdcReserveA, daiReserve, 500, 10_000_000_000),
	}}

	amountIn := pow10(18) // 1 WETH
	route, err := Simulate(context.Background(), cand, amountIn, 0.005)
	require.NoError(t, err)

	expectedOut, ok := new(big.Int).SetString("1990225440101844327326", 10)
	require.True(t, ok)
	assert.Equal(t, expectedOut, route.ExpectedAmountOut)
	assert.Equal(t, amountIn, route.AmountIn)
	assert.Len(t, route.Steps, 2)
	assert.Greater(t, route.PriceImpact, 0.0)
	assert.Less(t, route.PriceImpact, 0.01)
	assert.Equal(t, int64(100000+70000+5000), route.GasEstimate)
	assert.Equal(t, 2, route.RiskScore)

	for _, step := range route.Steps {
		assert.NotNil(t, step.AmountOutMin)
		assert.LessOrEqual(t, step.AmountOutMin.Cmp(mustAmountOutForStep(t, step)), 0)
	}
}

func mustAmountOutForStep(t *testing.T, step Step) *big.Int {
	t.Helper()
	out, err := amountOut(step.AmountIn, step.Edge.ReserveIn, step.Edge.ReserveOut, step.Edge.FeeTierPpm, step.Edge.Price)
	require.NoError(t, err)
	return out
}

func TestSimulate_DeadHop_ZeroReserve(t *testing.T) {
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", big.NewInt(0), big.NewInt(0), 3000, 0),
	}}
	_, err := Simulate(context.Background(), cand, big.NewInt(1), 0.005)
	assert.ErrorIs(t, err, ErrDeadHop)
}

func TestSimulate_DegenerateFallback_UsesPriceWhenReservesAreZero(t *testing.T) {
	edge := liquiditygraph.DirectedEdge{
		Exchange: "curve", From: usdc.ID, To: dai.ID,
		ReserveIn: big.NewInt(0), ReserveOut: big.NewInt(0),
		FeeTierPpm: 0, Price: 2.0, Liquidity: 1_000_000,
	}
	cand := search.Candidate{Hops: []search.Hop{{Edge: edge}}}

	route, err := Simulate(context.Background(), cand, pow10(6), 0.005)
	require.NoError(t, err)
	require.Len(t, route.Steps, 1)
	assert.Equal(t, big.NewInt(2_000_000), route.ExpectedAmountOut)
	// the degenerate fallback still runs through costmodel.PriceImpact,
	// which treats non-positive reserves as maximum impact.
	assert.Equal(t, 1.0, route.PriceImpact)
}

func TestSimulate_PriceImpact_SumsAcrossHops(t *testing.T) {
	thin := new(big.Int).Mul(big.NewInt(1000), pow10(18))
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", thin, thin, 3000, 1),
		directHop(usdc, dai, "sushiswap", thin, thin, 3000, 1),
		directHop(dai, weth, "curve", thin, thin, 500, 1),
	}}

	amountIn := new(big.Int).Mul(big.NewInt(500), pow10(18))
	route, err := Simulate(context.Background(), cand, amountIn, 0.005)
	require.NoError(t, err)

	var want float64
	current := amountIn
	for _, step := range route.Steps {
		want += costmodel.PriceImpact(current, step.Edge.ReserveIn, step.Edge.ReserveOut)
		current = mustAmountOutForStep(t, Step{AmountIn: current, Edge: step.Edge})
	}
	assert.InDelta(t, want, route.PriceImpact, 1e-9)
	assert.GreaterOrEqual(t, route.PriceImpact, 1.0, "three hops against a thin pool should each add meaningful impact")
}

// Output can never exceed the spot-rate projection of the input, and
// doubling the input never improves the per-unit rate.
func TestSimulate_ConservationAndMonotonicity(t *testing.T) {
	reserveIn := new(big.Int).Mul(big.NewInt(1000), pow10(18))
	reserveOut := new(big.Int).Mul(big.NewInt(2_000_000), pow10(6))
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", reserveIn, reserveOut, 3000, 4_000_000),
	}}

	small, err := Simulate(context.Background(), cand, pow10(18), 0.005)
	require.NoError(t, err)
	doubled := new(big.Int).Mul(big.NewInt(2), pow10(18))
	large, err := Simulate(context.Background(), cand, doubled, 0.005)
	require.NoError(t, err)

	// conservation: out * reserveIn <= in * reserveOut.
	lhs := new(big.Int).Mul(small.ExpectedAmountOut, reserveIn)
	rhs := new(big.Int).Mul(small.AmountIn, reserveOut)
	assert.LessOrEqual(t, lhs.Cmp(rhs), 0)

	// monotonicity, via cross-multiplication of the two rates:
	// large.out/large.in <= small.out/small.in.
	lhs = new(big.Int).Mul(large.ExpectedAmountOut, small.AmountIn)
	rhs = new(big.Int).Mul(small.ExpectedAmountOut, large.AmountIn)
	assert.LessOrEqual(t, lhs.Cmp(rhs), 0)
}

func TestSimulate_CancelledContextAbortsBetweenHops(t *testing.T) {
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", big.NewInt(1000), big.NewInt(1000), 3000, 1),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, cand, big.NewInt(1), 0.005)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestSimulate_InvalidAmount(t *testing.T) {
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", big.NewInt(1000), big.NewInt(1000), 3000, 1),
	}}
	_, err := Simulate(context.Background(), cand, big.NewInt(-1), 0.005)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSimulate_InvalidSlippage(t *testing.T) {
	cand := search.Candidate{Hops: []search.Hop{
		directHop(weth, usdc, "uniswap", big.NewInt(1000), big.NewInt(1000), 3000, 1),
	}}
	_, err := Simulate(context.Background(), cand, big.NewInt(1), 1.5)
	assert.ErrorIs(t, err, ErrInvalidSlippage)
}

func TestSimulate_EmptyRoute(t *testing.T) {
	_, err := Simulate(context.Background(), search.Candidate{}, big.NewInt(1), 0.005)
	assert.ErrorIs(t, err, ErrDeadHop)
}

func TestMinOut_AppliesSlippageTolerance(t *testing.T) {
	out, err := minOut(big.NewInt(1000), 0.01)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(990), out)
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

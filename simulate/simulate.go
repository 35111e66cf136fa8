// Package simulate walks a candidate route hop by hop with the true routed
// amount: apply the pool's fee and constant-product formula to the amount
// actually arriving at that hop, thread the output into the next hop, and
// accumulate the route-level metrics (expected output, price impact, gas,
// risk) the returned routes report.
package simulate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/swaphop/router-core/costmodel"
	"github.com/swaphop/router-core/liquiditygraph"
	"github.com/swaphop/router-core/search"
	"github.com/swaphop/router-core/token"
)

// Step is one executable leg of a route: the pool to swap through, the
// precise input amount arriving at that leg, and the minimum acceptable
// output after the slippage tolerance is applied.
type Step struct {
	Edge         liquiditygraph.DirectedEdge
	TokenIn      token.ID
	TokenOut     token.ID
	AmountIn     *big.Int
	AmountOutMin *big.Int
}

// Route is a fully simulated candidate: every hop's amounts are threaded
// precisely, and the aggregate metrics reflect the amount actually routed
// rather than the flat per-edge estimates search used to rank candidates.
type Route struct {
	Steps             []Step
	AmountIn          *big.Int
	ExpectedAmountOut *big.Int
	PriceImpact       float64
	GasEstimate       int64
	RiskScore         int
}

// Simulate walks cand hop by hop starting from amountIn, applying each
// pool's fee tier and reserves to the amount that actually arrives at that
// hop. It returns ErrDeadHop (and no Route) the moment a hop can't fill any
// part of the trade; the caller is expected to drop that one candidate and
// continue with the rest (ErrDeadHop aborts a single route, not the whole
// find_routes call). ctx cancellation is checked between hops and returns
// ErrCancelled.
func Simulate(ctx context.Context, cand search.Candidate, amountIn *big.Int, slippageTolerance float64) (Route, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return Route{}, ErrInvalidAmount
	}
	if slippageTolerance < 0 || slippageTolerance >= 1 {
		return Route{}, ErrInvalidSlippage
	}
	if len(cand.Hops) == 0 {
		return Route{}, fmt.Errorf("%w: empty route", ErrDeadHop)
	}

	steps := make([]Step, 0, len(cand.Hops))
	exchanges := make([]string, 0, len(cand.Hops))
	hopLiquidities := make([]costmodel.HopLiquidity, 0, len(cand.Hops))

	current := amountIn
	var aggregateImpact float64 // sum of each hop's [0,1] impact, so the route total stays within [0, len(steps)]

	for _, hop := range cand.Hops {
		select {
		case <-ctx.Done():
			return Route{}, ErrCancelled
		default:
		}

		edge := hop.Edge

		out, err := amountOut(current, edge.ReserveIn, edge.ReserveOut, edge.FeeTierPpm, edge.Price)
		if err != nil {
			return Route{}, fmt.Errorf("hop %s: %w", edge.PoolKey, err)
		}

		impact := costmodel.PriceImpact(current, edge.ReserveIn, edge.ReserveOut)
		aggregateImpact += impact

		floor, err := minOut(out, slippageTolerance)
		if err != nil {
			return Route{}, err
		}

		steps = append(steps, Step{
			Edge:         edge,
			TokenIn:      edge.From,
			TokenOut:     edge.To,
			AmountIn:     current,
			AmountOutMin: floor,
		})
		exchanges = append(exchanges, edge.Exchange)
		hopLiquidities = append(hopLiquidities, costmodel.HopLiquidity{Exchange: edge.Exchange, Liquidity: edge.Liquidity})

		current = out
	}

	return Route{
		Steps:             steps,
		AmountIn:          amountIn,
		ExpectedAmountOut: current,
		PriceImpact:       aggregateImpact,
		GasEstimate:       costmodel.GasEstimate(len(steps), exchanges),
		RiskScore:         costmodel.RiskScore(hopLiquidities),
	}, nil
}

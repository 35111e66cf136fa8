// This file implements the JSON boundary schemas: the request shape a
// caller sends across a network/process boundary, and the response shape
// routes are translated into regardless of which backend produced them.
// All integer amounts cross as decimal strings to avoid precision loss.
package router

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/swaphop/router-core/token"
)

// WireRequest is the JSON request schema.
type WireRequest struct {
	ChainID   uint64   `json:"chain_id"`
	TokenIn   string   `json:"token_in"`
	TokenOut  string   `json:"token_out"`
	AmountIn  string   `json:"amount_in"`
	Slippage  float64  `json:"slippage"`
	Exchanges []string `json:"exchanges"`
}

// DecodeRequest parses a WireRequest JSON payload into a FindRoutesRequest.
func DecodeRequest(data []byte) (FindRoutesRequest, error) {
	var wire WireRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		return FindRoutesRequest{}, fmt.Errorf("router: decode request: %w", err)
	}

	amount, ok := new(big.Int).SetString(wire.AmountIn, 10)
	if !ok {
		return FindRoutesRequest{}, fmt.Errorf("%w: amount_in %q is not a decimal integer", ErrInvalidAmount, wire.AmountIn)
	}

	return FindRoutesRequest{
		TokenIn:  token.NewID(wire.ChainID, wire.TokenIn),
		TokenOut: token.NewID(wire.ChainID, wire.TokenOut),
		AmountIn: amount,
		Options: FindRoutesOptions{
			Slippage:         wire.Slippage,
			AllowedExchanges: wire.Exchanges,
		},
	}, nil
}

// WireStep is one step of a WireRoute. FeeTier is a pointer because the
// wire contract allows null for backends with no fee concept; routes
// produced by this package always set it, zero-fee pools included.
type WireStep struct {
	ExchangeID   string   `json:"exchange_id"`
	TokenIn      string   `json:"token_in"`
	TokenOut     string   `json:"token_out"`
	FeeTier      *float64 `json:"fee_tier"`
	AmountIn     string   `json:"amount_in"`
	AmountOutMin string   `json:"amount_out_min"`
}

// WireRoute is the JSON response schema's per-route shape.
type WireRoute struct {
	Steps             []WireStep `json:"steps"`
	AmountIn          string     `json:"amount_in"`
	ExpectedAmountOut string     `json:"expected_amount_out"`
	PriceImpact       float64    `json:"price_impact"`
	GasEstimate       int64      `json:"gas_estimate"`
	RiskScore         int        `json:"risk_score"`
}

// WireResponse is the JSON response schema.
type WireResponse struct {
	Routes []WireRoute `json:"routes"`
}

// EncodeResponse translates a Result into the wire response schema.
func EncodeResponse(result Result) WireResponse {
	routes := make([]WireRoute, 0, len(result.Routes))
	for _, rt := range result.Routes {
		routes = append(routes, encodeRoute(rt))
	}
	return WireResponse{Routes: routes}
}

func encodeRoute(rt SwapRoute) WireRoute {
	steps := make([]WireStep, 0, len(rt.Steps))
	for _, s := range rt.Steps {
		f := float64(s.FeeTierPpm) / float64(1_000_000)
		feeTier := &f
		steps = append(steps, WireStep{
			ExchangeID:   s.Exchange,
			TokenIn:      s.TokenIn.Address,
			TokenOut:     s.TokenOut.Address,
			FeeTier:      feeTier,
			AmountIn:     s.AmountIn.String(),
			AmountOutMin: s.AmountOutMin.String(),
		})
	}
	return WireRoute{
		Steps:             steps,
		AmountIn:          rt.AmountIn.String(),
		ExpectedAmountOut: rt.ExpectedAmountOut.String(),
		PriceImpact:       rt.PriceImpact,
		GasEstimate:       rt.GasEstimate,
		RiskScore:         rt.RiskScore,
	}
}

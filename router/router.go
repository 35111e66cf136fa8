// Package router is the routing facade: it owns the liquidity graph, wires
// the cost model's coefficients into the search stage, simulates and
// adjusts candidates, and returns an ordered route list. It is the single
// entry point external callers (a CLI, an RPC handler, a predictive-model
// harness) use; every other package in this module is a component it
// orchestrates.
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swaphop/router-core/adjuster"
	"github.com/swaphop/router-core/costmodel"
	"github.com/swaphop/router-core/liquiditygraph"
	"github.com/swaphop/router-core/metrics"
	"github.com/swaphop/router-core/pool"
	"github.com/swaphop/router-core/search"
	"github.com/swaphop/router-core/simulate"
)

// Logger defines a narrow, package-local structured logging contract, so
// the router never imports log/slog (or any concrete logger) directly and
// can be driven with a fake in tests. cmd/routerd wires a log/slog JSON
// handler into this interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards every call; it's the default when no logger Option is
// supplied, so the router never nil-checks its logger field at call sites.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Router at construction. The interface's apply method
// is unexported, so options can only be built by this package's own
// constructors.
type Option interface {
	apply(*Router)
}

type funcOption func(*Router)

func (f funcOption) apply(r *Router) { f(r) }

// WithLogger sets the Router's structured logger.
func WithLogger(l Logger) Option {
	return funcOption(func(r *Router) { r.logger = l })
}

// WithMetrics wires a Prometheus metrics handle into the Router.
func WithMetrics(m *metrics.Metrics) Option {
	return funcOption(func(r *Router) { r.metrics = m })
}

// WithCoefficients overrides the default edge-weight coefficients the
// search stage uses.
func WithCoefficients(c costmodel.Coefficients) Option {
	return funcOption(func(r *Router) { r.coefficients = c })
}

// WithDefaultK overrides the default number of candidate paths requested
// per find_routes call when a caller does not set FindRoutesOptions.K.
func WithDefaultK(k int) Option {
	return funcOption(func(r *Router) {
		if k > 0 {
			r.defaultK = k
		}
	})
}

// WithDefaultSlippage overrides the default per-hop slippage tolerance used
// when a caller does not set FindRoutesOptions.Slippage.
func WithDefaultSlippage(slippage float64) Option {
	return funcOption(func(r *Router) { r.defaultSlippage = slippage })
}

// WithSubmitter records a Submitter against the Router for callers to
// retrieve via Submitter(); the router never invokes it (see the Submitter
// doc comment in types.go).
func WithSubmitter(s Submitter) Option {
	return funcOption(func(r *Router) { r.submitter = s })
}

// WithAdjuster sets the initial post-ranking Adjuster, equivalent to
// calling SetAdjuster immediately after New.
func WithAdjuster(adj adjuster.Adjuster) Option {
	return funcOption(func(r *Router) { r.adj = adj })
}

// Router is the router facade: it owns a liquidity graph and orchestrates
// the search -> simulate -> adjust -> rank pipeline behind FindRoutes.
type Router struct {
	graph *liquiditygraph.Graph

	adjMu sync.RWMutex
	adj   adjuster.Adjuster

	coefficients    costmodel.Coefficients
	defaultK        int
	defaultSlippage float64

	logger    Logger
	metrics   *metrics.Metrics
	submitter Submitter
}

// New builds a Router around a fresh, empty liquidity graph.
func New(opts ...Option) *Router {
	r := &Router{
		graph:           liquiditygraph.New(),
		adj:             adjuster.IdentityAdjuster{},
		coefficients:    costmodel.DefaultCoefficients,
		defaultK:        5,
		defaultSlippage: costmodel.DefaultSlippage,
		logger:          noopLogger{},
	}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// UpsertPool inserts or replaces a pool in the liquidity graph. A malformed
// pool fails with pool.ErrInvalidPool and is never silently accepted.
func (r *Router) UpsertPool(p pool.Pool) error {
	return r.graph.UpsertPool(p)
}

// RemovePool deletes a pool (and both of its directed edges) from the
// liquidity graph.
func (r *Router) RemovePool(key pool.Key) {
	r.graph.RemovePool(key)
}

// SetAdjuster installs adj as the router's post-ranking hook. A nil adj
// resets to the identity adjuster: when no hook is configured, adjustment
// is a no-op.
func (r *Router) SetAdjuster(adj adjuster.Adjuster) {
	if adj == nil {
		adj = adjuster.IdentityAdjuster{}
	}
	r.adjMu.Lock()
	r.adj = adj
	r.adjMu.Unlock()
}

// Submitter returns the external submission capability wired in via
// WithSubmitter, or nil if none was configured.
func (r *Router) Submitter() Submitter {
	return r.submitter
}

func (r *Router) currentAdjuster() adjuster.Adjuster {
	r.adjMu.RLock()
	defer r.adjMu.RUnlock()
	return r.adj
}

// FindRoutes runs the full pipeline: resolve token
// identities, search for up to k candidate paths, simulate each hop by
// hop, pass survivors through the adjuster, and return them ordered by
// expected_amount_out descending (ties broken by lower risk, then lower
// gas). ctx cancellation is honored between candidate paths and between
// hops during simulation; a cancelled call always returns an empty Result
// alongside ErrCancelled, never a partial one. req.Options.Deadline, if
// set, instead returns whatever complete routes were produced plus
// Result.Partial = true.
func (r *Router) FindRoutes(ctx context.Context, req FindRoutesRequest) (Result, error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.ObserveSearchDuration(time.Since(start).Seconds())
		}
	}()

	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAmount, req.AmountIn)
	}

	snap := r.graph.View()
	if _, ok := snap.Tokens[req.TokenIn]; !ok {
		return Result{}, fmt.Errorf("%w: token_in %s", ErrUnknownToken, req.TokenIn)
	}
	if _, ok := snap.Tokens[req.TokenOut]; !ok {
		return Result{}, fmt.Errorf("%w: token_out %s", ErrUnknownToken, req.TokenOut)
	}

	k := req.Options.K
	if k <= 0 {
		k = r.defaultK
	}
	slippage := req.Options.Slippage
	if slippage <= 0 {
		slippage = r.defaultSlippage
	}

	deadline := req.Options.Deadline
	hasDeadline := !deadline.IsZero()

	candidates, err := search.FindPaths(ctx, snap, search.Request{
		TokenIn:          req.TokenIn,
		TokenOut:         req.TokenOut,
		AmountIn:         req.AmountIn,
		K:                k,
		AllowedExchanges: req.Options.AllowedExchanges,
		Coefficients:     r.coefficients,
	})
	if err != nil {
		if errors.Is(err, search.ErrCancelled) {
			r.recordOutcome("cancelled", 0)
			return Result{}, ErrCancelled
		}
		if errors.Is(err, search.ErrUnknownToken) {
			return Result{}, fmt.Errorf("%w: %v", ErrUnknownToken, err)
		}
		return Result{}, err
	}

	simRoutes := make([]simulate.Route, 0, len(candidates))
	partial := false

	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			r.recordOutcome("cancelled", 0)
			return Result{}, ErrCancelled
		default:
		}
		if hasDeadline && time.Now().After(deadline) {
			partial = true
			break
		}

		simRoute, err := simulate.Simulate(ctx, cand, req.AmountIn, slippage)
		if err != nil {
			if errors.Is(err, simulate.ErrCancelled) {
				r.recordOutcome("cancelled", 0)
				return Result{}, ErrCancelled
			}
			r.logger.Warn("dropping dead route", "error", err.Error())
			if r.metrics != nil {
				r.metrics.IncDroppedRoutes("dead_hop")
			}
			continue
		}
		simRoutes = append(simRoutes, simRoute)
	}

	adjusted, adjErr := adjuster.Apply(r.currentAdjuster(), simRoutes)
	if adjErr != nil {
		r.logger.Warn("adjuster faulted, returning unadjusted routes", "error", adjErr.Error())
		if r.metrics != nil {
			r.metrics.IncDroppedRoutes("adjuster_fault")
		}
		adjusted = simRoutes
	}

	routes := make([]SwapRoute, 0, len(adjusted))
	for _, sim := range adjusted {
		routes = append(routes, toSwapRoute(sim))
	}

	sort.SliceStable(routes, func(i, j int) bool {
		cmp := routes[i].ExpectedAmountOut.Cmp(routes[j].ExpectedAmountOut)
		if cmp != 0 {
			return cmp > 0 // descending
		}
		if routes[i].RiskScore != routes[j].RiskScore {
			return routes[i].RiskScore < routes[j].RiskScore
		}
		return routes[i].GasEstimate < routes[j].GasEstimate
	})

	outcome := "ok"
	if len(routes) == 0 {
		outcome = "empty"
	} else if partial {
		outcome = "partial"
	}
	r.recordOutcome(outcome, len(routes))

	return Result{Routes: routes, Partial: partial}, nil
}

func (r *Router) recordOutcome(outcome string, n int) {
	if r.metrics != nil {
		r.metrics.IncRoutesFound(outcome, n)
	}
}

// toSwapRoute converts a simulated route into the public SwapRoute schema,
// minting a fresh RouteID and tagging it with the builtin backend.
func toSwapRoute(sim simulate.Route) SwapRoute {
	steps := make([]SwapStep, 0, len(sim.Steps))
	for _, s := range sim.Steps {
		steps = append(steps, SwapStep{
			Exchange:     s.Edge.Exchange,
			PoolID:       string(s.Edge.PoolKey),
			TokenIn:      s.TokenIn,
			TokenOut:     s.TokenOut,
			FeeTierPpm:   s.Edge.FeeTierPpm,
			AmountIn:     s.AmountIn,
			AmountOutMin: s.AmountOutMin,
		})
	}
	return SwapRoute{
		ID:                RouteID(uuid.NewString()),
		Backend:           BackendBuiltin,
		Steps:             steps,
		AmountIn:          sim.AmountIn,
		ExpectedAmountOut: sim.ExpectedAmountOut,
		PriceImpact:       sim.PriceImpact,
		GasEstimate:       sim.GasEstimate,
		RiskScore:         sim.RiskScore,
	}
}

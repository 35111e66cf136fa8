package router

import (
	"context"
	"math/big"
	"time"

	"github.com/swaphop/router-core/token"
)

// RouteID opaquely identifies one SwapRoute returned by FindRoutes. It mints
// from google/uuid rather than a sequence number so a route handed to an
// external submit(bundle) -> handle capability (see Submitter) can be
// correlated back to the search that produced it without the core knowing
// anything about that capability's own identifiers.
type RouteID string

// Backend records which search engine produced a route. The core only ever
// produces BackendBuiltin; the field exists so a caller that wires in an
// alternate accelerated search backend can report its provenance through
// the same SwapRoute schema, since responses from any backend must
// translate through one schema regardless of how they were produced.
type Backend int

const (
	// BackendBuiltin marks a route produced by this package's own
	// search+simulate pipeline.
	BackendBuiltin Backend = iota
	// BackendNative marks a route reported by an external accelerated
	// search implementation. The core never sets this itself.
	BackendNative
)

func (b Backend) String() string {
	switch b {
	case BackendBuiltin:
		return "builtin"
	case BackendNative:
		return "native"
	default:
		return "unknown"
	}
}

// SwapStep is one hop of a SwapRoute: the exchange and pool touched, the
// tokens swapped, and the amounts threaded through simulation. FeeTierPpm
// is always populated from the pool; a genuinely fee-free pool reports 0,
// which is a valid tier, not an absent one.
type SwapStep struct {
	Exchange     string
	PoolID       string
	TokenIn      token.ID
	TokenOut     token.ID
	FeeTierPpm   uint32
	AmountIn     *big.Int
	AmountOutMin *big.Int
}

// SwapRoute is one candidate execution path, fully simulated: expected
// output, aggregate price impact, gas estimate, and risk score.
type SwapRoute struct {
	ID                RouteID
	Backend           Backend
	Steps             []SwapStep
	AmountIn          *big.Int
	ExpectedAmountOut *big.Int
	PriceImpact       float64
	GasEstimate       int64
	RiskScore         int
}

// FindRoutesOptions carries the optional per-request overrides: k,
// slippage, an exchange allow-list, and a wall-clock deadline. Cancellation
// is carried on the call's ctx rather than as a field here.
type FindRoutesOptions struct {
	K                int
	Slippage         float64
	AllowedExchanges []string
	Deadline         time.Time // zero value means no deadline
}

// FindRoutesRequest is the input to Router.FindRoutes.
type FindRoutesRequest struct {
	TokenIn  token.ID
	TokenOut token.ID
	AmountIn *big.Int
	Options  FindRoutesOptions
}

// Result is the output of Router.FindRoutes: the ordered routes, and
// whether a wall-clock deadline cut the search short (the Partial marker
// is surfaced alongside whatever complete routes were produced).
type Result struct {
	Routes  []SwapRoute
	Partial bool
}

// Handle opaquely identifies a bundle accepted by a Submitter, standing in
// for the "submit(bundle) -> handle" external capability callers wire in.
type Handle string

// Bundle is the minimal payload the router hands to an external Submitter:
// the simulated route plus room for a caller-assembled raw transaction
// payload. The core never inspects Raw; it exists purely so a caller can
// carry its own encoding through the same value.
type Bundle struct {
	Route SwapRoute
	Raw   []byte
}

// Submitter is the external MEV-relay/RPC collaborator boundary: transaction
// signing, mempool submission, and bundle delivery are deliberately out of
// scope for this core, which consumes only a submit(bundle) -> handle
// capability. The router facade accepts a Submitter via WithSubmitter and
// never calls it internally; it exists purely as the documented seam a
// caller wires its own transaction-signing/relay client into.
type Submitter interface {
	Simulate(ctx context.Context, b Bundle) (Bundle, error)
	Submit(ctx context.Context, b Bundle) (Handle, error)
}

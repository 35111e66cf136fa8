package simulate

import "errors"

var (
	// ErrInvalidAmount is returned when a nil or negative amount is supplied
	// to a hop.
	ErrInvalidAmount = errors.New("simulate: amount must be non-nil and non-negative")
	// ErrDeadHop marks a single hop whose pool can no longer fill any part of
	// the route (the implied output is zero, or the reserves are not both
	// positive and the pool has no positive price to fall back on). It aborts
	// only the one route being simulated; the caller drops that route and
	// continues with the rest of the candidate set.
	ErrDeadHop = errors.New("simulate: hop produces zero output")
	// ErrInvalidSlippage is returned for a slippage tolerance outside [0, 1).
	ErrInvalidSlippage = errors.New("simulate: slippage tolerance must be in [0, 1)")
	// ErrCancelled is returned when ctx is done before every hop has been
	// walked. Unlike ErrDeadHop it aborts the whole find_routes call.
	ErrCancelled = errors.New("simulate: cancelled")
)

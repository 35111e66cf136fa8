// Package adjuster provides the pluggable post-ranking hook the router
// facade runs simulated routes through before returning them. It stands in
// for an externally supplied scoring model (e.g. a learned predictor
// reordering routes by expected execution quality): Adjuster is a narrow Go
// interface so the router never depends on any particular ranking model,
// the same way external concerns like logging are narrowed behind a small
// local interface rather than importing a concrete implementation directly.
package adjuster

import (
	"errors"
	"fmt"

	"github.com/swaphop/router-core/simulate"
)

// ErrAdjusterFault is wrapped around any panic or error an Adjuster
// produces. A faulting adjuster never aborts find_routes: Apply recovers
// and returns the pre-adjustment routes unchanged.
var ErrAdjusterFault = errors.New("adjuster: fault")

// Adjuster re-ranks (or otherwise adjusts) a slice of simulated routes. It
// may reorder routes but must not invent routes that weren't in its input,
// drop steps, or change a route's amount_in.
type Adjuster interface {
	Adjust(routes []simulate.Route) ([]simulate.Route, error)
}

// IdentityAdjuster is the default Adjuster: it returns routes unchanged,
// matching the router's behavior when no ranking model is configured.
type IdentityAdjuster struct{}

// Adjust returns routes unmodified.
func (IdentityAdjuster) Adjust(routes []simulate.Route) ([]simulate.Route, error) {
	return routes, nil
}

// Apply runs adj against routes, enforcing the adjuster contract and
// never letting a misbehaving adjuster take the whole find_routes call
// down with it. A panicking or erroring adjuster is logged by the caller
// (via the returned error) and bypassed: Apply falls back to routes as
// given. A result that doesn't preserve the input route set (wrong count,
// an amount_in that changed, or a step sequence that changed) is treated
// the same way, since that's the adjuster inventing state it isn't allowed
// to invent.
func Apply(adj Adjuster, routes []simulate.Route) (result []simulate.Route, err error) {
	if adj == nil {
		return routes, nil
	}

	defer func() {
		if r := recover(); r != nil {
			result = routes
			err = fmt.Errorf("%w: panic: %v", ErrAdjusterFault, r)
		}
	}()

	adjusted, adjErr := adj.Adjust(routes)
	if adjErr != nil {
		return routes, fmt.Errorf("%w: %v", ErrAdjusterFault, adjErr)
	}
	if !sameRouteSet(routes, adjusted) {
		return routes, fmt.Errorf("%w: adjuster altered the route set", ErrAdjusterFault)
	}
	return adjusted, nil
}

// sameRouteSet checks that adjusted is a reordering of routes: same count,
// and for each route the same amount_in and the same sequence of pool keys
// (steps), which is all the identity an Adjuster is permitted to preserve
// or break.
func sameRouteSet(routes, adjusted []simulate.Route) bool {
	if len(routes) != len(adjusted) {
		return false
	}

	seen := make(map[string]int, len(routes))
	for _, r := range routes {
		seen[routeIdentity(r)]++
	}
	for _, r := range adjusted {
		key := routeIdentity(r)
		if seen[key] == 0 {
			return false
		}
		seen[key]--
	}
	return true
}

func routeIdentity(r simulate.Route) string {
	s := r.AmountIn.String()
	for _, step := range r.Steps {
		s += "|" + string(step.Edge.PoolKey)
	}
	return s
}

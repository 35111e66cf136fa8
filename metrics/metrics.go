// Package metrics defines the router's Prometheus instrumentation. A single
// Metrics value is built once per process with NewMetrics and threaded into
// router.New via router.WithMetrics, taking a prometheus.Registerer
// parameter so callers can point it at prometheus.DefaultRegisterer or an
// isolated registry in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histograms the router facade records
// against each find_routes call.
type Metrics struct {
	routesFound    *prometheus.CounterVec
	searchDuration prometheus.Histogram
	droppedRoutes  *prometheus.CounterVec
}

// NewMetrics registers the router's metrics against reg and returns the
// handle used to record them. reg is typically prometheus.DefaultRegisterer
// in a long-running process, or a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		routesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_routes_found_total",
			Help: "Routes returned by find_routes, labeled by outcome.",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "router_find_routes_duration_seconds",
			Help:    "Wall-clock duration of a find_routes call.",
			Buckets: prometheus.DefBuckets,
		}),
		droppedRoutes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_dropped_routes_total",
			Help: "Candidate routes dropped during simulation, labeled by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.routesFound, m.searchDuration, m.droppedRoutes)
	return m
}

// ObserveSearchDuration records the wall-clock duration of one find_routes
// call.
func (m *Metrics) ObserveSearchDuration(seconds float64) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(seconds)
}

// IncRoutesFound adds n to the routes-found counter for the given outcome
// ("ok", "cancelled", "partial", "empty"). n may be zero; the labeled
// series still materializes so empty and cancelled calls remain visible.
func (m *Metrics) IncRoutesFound(outcome string, n int) {
	if m == nil || n < 0 {
		return
	}
	m.routesFound.WithLabelValues(outcome).Add(float64(n))
}

// IncDroppedRoutes increments the dropped-routes counter for the given
// reason ("dead_hop", "adjuster_fault").
func (m *Metrics) IncDroppedRoutes(reason string) {
	if m == nil {
		return
	}
	m.droppedRoutes.WithLabelValues(reason).Inc()
}

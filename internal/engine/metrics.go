package engine

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the search-health gauges the SMP coordinator updates after
// every completed iterative-deepening iteration. A fresh registry is created
// per Engine rather than using prometheus's global DefaultRegisterer, so
// multiple Engine instances in the same process (e.g. in tests) don't
// collide on metric registration.
type metrics struct {
	registry    *prometheus.Registry
	nodesPerSec prometheus.Gauge
	hashFull    prometheus.Gauge
	ttHitRate   prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		nodesPerSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chego",
			Subsystem: "search",
			Name:      "nodes_per_second",
			Help:      "Search nodes per second across all workers, averaged over the search so far.",
		}),
		hashFull: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chego",
			Subsystem: "tt",
			Name:      "hash_full_permille",
			Help:      "Transposition table occupancy, in parts per thousand.",
		}),
		ttHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chego",
			Subsystem: "tt",
			Name:      "hit_rate_percent",
			Help:      "Transposition table probe hit rate, as a percentage.",
		}),
	}

	registry.MustRegister(m.nodesPerSec, m.hashFull, m.ttHitRate)
	return m
}

// Registry exposes the Engine's private metrics registry so a caller can
// serve it over /metrics or merge it into a larger registry.
func (e *Engine) Registry() *prometheus.Registry {
	return e.metrics.registry
}

func (m *metrics) update(nodesPerSec float64, hashFull int, hitRate float64) {
	m.nodesPerSec.Set(nodesPerSec)
	m.hashFull.Set(float64(hashFull))
	m.ttHitRate.Set(hitRate)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search kinds used as the "kind" label.
const (
	SearchPureLoops = "pure_loops"
	SearchEdgeLoops = "edge_loops"
	SearchPath      = "path"
)

// initSearchMetrics initializes loop and path search metrics.
func (m *Manager) initSearchMetrics(cfg Config) {
	m.searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Loop and path search duration in seconds",
			Buckets:   cfg.SearchDurationBuckets,
		},
		[]string{"kind"},
	)

	m.loopsFound = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loops_found",
			Help:      "Number of loops returned per search",
			Buckets:   cfg.LoopSizeBuckets,
		},
		[]string{"kind"},
	)

	m.loopLength = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loop_edges",
			Help:      "Number of edges per returned loop",
			Buckets:   cfg.LoopSizeBuckets,
		},
		[]string{"kind"},
	)

	m.pathLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_vertices",
			Help:      "Number of vertices per shortest path found",
			Buckets:   cfg.LoopSizeBuckets,
		},
	)

	m.pathsMissing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "path_not_found_total",
			Help:      "Total number of shortest path searches without a result",
		},
	)

	m.registry.MustRegister(m.searchDuration)
	m.registry.MustRegister(m.loopsFound)
	m.registry.MustRegister(m.loopLength)
	m.registry.MustRegister(m.pathLength)
	m.registry.MustRegister(m.pathsMissing)
}

// RecordLoopSearch records a loop search and the size of each loop found.
func (m *Manager) RecordLoopSearch(kind string, loopSizes []int, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.searchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.loopsFound.WithLabelValues(kind).Observe(float64(len(loopSizes)))
	for _, n := range loopSizes {
		m.loopLength.WithLabelValues(kind).Observe(float64(n))
	}
}

// RecordPathSearch records a shortest path search. verts is the number of
// vertices on the path, ignored when found is false.
func (m *Manager) RecordPathSearch(found bool, verts int, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.searchDuration.WithLabelValues(SearchPath).Observe(duration.Seconds())
	if !found {
		m.pathsMissing.Inc()
		return
	}
	m.pathLength.Observe(float64(verts))
}

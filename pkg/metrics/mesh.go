package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initMeshMetrics initializes mesh store and session metrics.
func (m *Manager) initMeshMetrics(cfg Config) {
	m.meshesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "meshes_loaded",
			Help:      "Current number of meshes held in memory",
		},
	)

	m.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_sessions",
			Help:      "Current number of select-loop sessions",
		},
	)

	m.storageRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_requests_total",
			Help:      "Total number of storage requests by backend, method and result",
		},
		[]string{"backend", "method", "result"},
	)

	m.storageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_request_duration_seconds",
			Help:      "Storage request duration in seconds",
			Buckets:   cfg.StorageDurationBuckets,
		},
		[]string{"backend", "method"},
	)

	m.registry.MustRegister(m.meshesActive)
	m.registry.MustRegister(m.sessionsActive)
	m.registry.MustRegister(m.storageRequests)
	m.registry.MustRegister(m.storageDuration)
}

// SetMeshesLoaded sets the number of meshes held in memory.
func (m *Manager) SetMeshesLoaded(count int) {
	if !m.enabled {
		return
	}
	m.meshesActive.Set(float64(count))
}

// SetLoopSessions sets the number of select-loop sessions.
func (m *Manager) SetLoopSessions(count int) {
	if !m.enabled {
		return
	}
	m.sessionsActive.Set(float64(count))
}

// RecordStorageRequest records one storage call. result is "ok",
// "not_found" or "error".
func (m *Manager) RecordStorageRequest(backend, method, result string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.storageRequests.WithLabelValues(backend, method, result).Inc()
	m.storageDuration.WithLabelValues(backend, method).Observe(duration.Seconds())
}

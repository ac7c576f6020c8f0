package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initOperationMetrics initializes selection operation metrics.
func (m *Manager) initOperationMetrics(cfg Config) {
	m.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of selection operations by outcome",
		},
		[]string{"operation", "status", "level"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Selection operation duration in seconds",
			Buckets:   cfg.OperationDurationBuckets,
		},
		[]string{"operation"},
	)

	m.registry.MustRegister(m.operations)
	m.registry.MustRegister(m.operationDuration)
}

// RecordOperation records one selection operation and its outcome.
func (m *Manager) RecordOperation(operation, status, level string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.operations.WithLabelValues(operation, status, level).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Package metrics provides Prometheus metrics instrumentation for edgy.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edgy"

// Manager manages all Prometheus metrics for edgy.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Selection operation metrics
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// Loop and path search metrics
	searchDuration *prometheus.HistogramVec
	loopsFound     *prometheus.HistogramVec
	loopLength     *prometheus.HistogramVec
	pathLength     prometheus.Histogram
	pathsMissing   prometheus.Counter

	// Mesh store metrics
	meshesActive    prometheus.Gauge
	sessionsActive  prometheus.Gauge
	storageRequests *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpConnections prometheus.Gauge
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Port    int
	Path    string

	// Histogram bucket configurations
	OperationDurationBuckets []float64
	SearchDurationBuckets    []float64
	StorageDurationBuckets   []float64
	HTTPDurationBuckets      []float64
	// LoopSizeBuckets bucket both loop counts and loop/path lengths.
	LoopSizeBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                  true,
		Port:                     9091,
		Path:                     "/metrics",
		OperationDurationBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		SearchDurationBuckets:    []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		StorageDurationBuckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		HTTPDurationBuckets:      []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		LoopSizeBuckets:          []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()

	// Register Go runtime metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}

	m.initOperationMetrics(cfg)
	m.initSearchMetrics(cfg)
	m.initMeshMetrics(cfg)
	m.initHTTPMetrics(cfg)

	return m
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// StartServer starts the metrics HTTP server on the configured port.
func (m *Manager) StartServer(ctx context.Context, port int, path string) error {
	if !m.enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// NoOpManager returns a no-op metrics manager for when metrics are disabled.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}

package engine

import (
	"time"

	"github.com/edgy/edgy/pkg/logger"
)

// MetricsRecorder receives the engine's measurements. *metrics.Manager
// implements it.
type MetricsRecorder interface {
	RecordOperation(operation, status, level string, duration time.Duration)
	RecordLoopSearch(kind string, loopSizes []int, duration time.Duration)
	RecordPathSearch(found bool, verts int, duration time.Duration)
	RecordStorageRequest(backend, method, result string, duration time.Duration)
	SetMeshesLoaded(count int)
	SetLoopSessions(count int)
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(string, string, string, time.Duration)      {}
func (nopMetrics) RecordLoopSearch(string, []int, time.Duration)              {}
func (nopMetrics) RecordPathSearch(bool, int, time.Duration)                  {}
func (nopMetrics) RecordStorageRequest(string, string, string, time.Duration) {}
func (nopMetrics) SetMeshesLoaded(int)                                        {}
func (nopMetrics) SetLoopSessions(int)                                        {}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithMetrics sets the metrics recorder for the engine.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStorageBackend names the storage backend in storage metrics.
func WithStorageBackend(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.backend = name
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

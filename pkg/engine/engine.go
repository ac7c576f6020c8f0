// Package engine serves the loop operations over stored meshes. Meshes are
// loaded from storage on first use and kept in memory; operations on one
// mesh run one at a time.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgy/edgy/config"
	"github.com/edgy/edgy/pkg/logger"
	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/ops"
	"github.com/edgy/edgy/pkg/selection"
	"github.com/edgy/edgy/pkg/storage"
	"github.com/edgy/edgy/pkg/version"
)

type engineState int32

const (
	stateIdle engineState = iota
	stateRunning
	stateStopped
)

func (s engineState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Engine runs loop analysis and selection operations on stored meshes.
type Engine struct {
	cfg     *config.Config
	store   storage.Storage
	backend string
	metrics MetricsRecorder
	log     logger.Logger
	now     func() time.Time

	state     atomic.Int32
	startedAt time.Time

	maxLoops        atomic.Int64
	disableFaceBias atomic.Bool

	mu       sync.Mutex
	meshes   map[string]*meshEntry
	sessions atomic.Int64
}

// meshEntry is a loaded mesh. lock is a one-slot semaphore so that waiting
// for it can be abandoned when the caller's context ends.
type meshEntry struct {
	lock    chan struct{}
	record  *storage.MeshRecord
	mesh    *memory.Mesh
	session *ops.Session
	deleted bool
}

// New creates an engine over store.
func New(cfg *config.Config, store storage.Storage, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	e := &Engine{
		cfg:     cfg,
		backend: cfg.Storage.Type,
		metrics: nopMetrics{},
		log:     logger.Global(),
		now:     time.Now,
		meshes:  make(map[string]*meshEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.store = &observedStorage{next: store, backend: e.backend, metrics: e.metrics}

	e.SetMaxLoops(cfg.Search.MaxLoops)
	e.disableFaceBias.Store(cfg.Search.DisableFaceBias)
	return e, nil
}

// Start makes the engine accept requests.
func (e *Engine) Start(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		return fmt.Errorf("engine is already running or stopped")
	}
	e.startedAt = e.now()
	e.log.InfoContext(ctx, "engine started",
		"storage", e.backend,
		"max_loops", e.maxLoops.Load(),
	)
	return nil
}

// Stop stops accepting requests and drops every loaded mesh. Storage is
// left open; it belongs to the caller.
func (e *Engine) Stop(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(stateRunning), int32(stateStopped)) {
		return nil
	}

	e.mu.Lock()
	e.meshes = make(map[string]*meshEntry)
	e.mu.Unlock()
	e.sessions.Store(0)
	e.metrics.SetMeshesLoaded(0)
	e.metrics.SetLoopSessions(0)

	e.log.InfoContext(ctx, "engine stopped")
	return nil
}

// IsHealthy returns true if the engine is running.
func (e *Engine) IsHealthy() bool {
	return engineState(e.state.Load()) == stateRunning
}

// IsReady returns true if the engine is ready to accept requests.
func (e *Engine) IsReady() bool {
	return e.IsHealthy() && e.store != nil
}

// EngineStatus represents the engine's current status.
type EngineStatus struct {
	State        string `json:"state"`
	Uptime       string `json:"uptime,omitempty"`
	Version      string `json:"version,omitempty"`
	Storage      string `json:"storage"`
	LoadedMeshes int    `json:"loaded_meshes"`
	MaxLoops     int    `json:"max_loops"`
}

// GetStatus returns detailed engine status.
func (e *Engine) GetStatus() *EngineStatus {
	state := engineState(e.state.Load())

	e.mu.Lock()
	loaded := len(e.meshes)
	e.mu.Unlock()

	status := &EngineStatus{
		State:        state.String(),
		Version:      version.Version,
		Storage:      e.backend,
		LoadedMeshes: loaded,
		MaxLoops:     int(e.maxLoops.Load()),
	}
	if state == stateRunning {
		status.Uptime = e.now().Sub(e.startedAt).Truncate(time.Second).String()
	}
	return status
}

// SetMaxLoops changes the completion search cap for later searches. Values
// below one select the default.
func (e *Engine) SetMaxLoops(n int) {
	if n <= 0 {
		n = loop.DefaultMaxLoops
	}
	e.maxLoops.Store(int64(n))
}

// SetFaceBias turns the face-sharing tie-break of path searches on or off.
func (e *Engine) SetFaceBias(enabled bool) {
	e.disableFaceBias.Store(!enabled)
}

// ApplyHotReload applies the settings that can change without a restart.
func (e *Engine) ApplyHotReload(hot config.HotReloadableConfig) {
	e.SetMaxLoops(hot.MaxLoops)
	e.SetFaceBias(!hot.DisableFaceBias)
	e.log.Info("engine settings reloaded",
		"max_loops", e.maxLoops.Load(),
		"face_bias", !hot.DisableFaceBias,
	)
}

func (e *Engine) searchOptions() loop.SearchOptions {
	return loop.SearchOptions{MaxLoops: int(e.maxLoops.Load())}
}

func (e *Engine) checkRunning() error {
	if !e.IsHealthy() {
		return &EngineNotRunningError{}
	}
	return nil
}

// entry returns the loaded mesh for id, loading it from storage if needed.
func (e *Engine) entry(ctx context.Context, id string) (*meshEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ent, ok := e.meshes[id]; ok {
		return ent, nil
	}

	ctx, span := engineTracer().Start(ctx, spanLoadMesh)
	defer span.End()

	rec, err := e.store.GetMesh(ctx, id)
	if err != nil {
		return nil, err
	}
	ent, err := newMeshEntry(rec)
	if err != nil {
		return nil, fmt.Errorf("load mesh %s: %w", id, err)
	}
	e.meshes[id] = ent
	e.metrics.SetMeshesLoaded(len(e.meshes))
	e.log.DebugContext(ctx, "mesh loaded", "mesh_id", id, "edges", ent.mesh.NumEdges())
	return ent, nil
}

func newMeshEntry(rec *storage.MeshRecord) (*meshEntry, error) {
	m, err := memory.New(&rec.Document, memory.WithIdentity(rec.ID))
	if err != nil {
		return nil, err
	}
	rec.State.Restore(m)
	return &meshEntry{
		lock:   make(chan struct{}, 1),
		record: rec,
		mesh:   m,
	}, nil
}

// withMesh runs fn with exclusive access to the mesh.
func (e *Engine) withMesh(ctx context.Context, id string, fn func(ent *meshEntry) error) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	ent, err := e.entry(ctx, id)
	if err != nil {
		return err
	}

	select {
	case ent.lock <- struct{}{}:
	case <-ctx.Done():
		return &MeshBusyError{MeshID: id, Cause: ctx.Err()}
	}
	defer func() { <-ent.lock }()

	if ent.deleted {
		return &storage.NotFoundError{EntityType: "mesh", ID: id}
	}
	return fn(ent)
}

// persist stores the current selection of a loaded mesh.
func (e *Engine) persist(ctx context.Context, ent *meshEntry) error {
	rec := storage.CloneMesh(ent.record)
	rec.State = selection.Capture(ent.mesh)
	if err := e.store.SaveMesh(ctx, rec); err != nil {
		return fmt.Errorf("save selection of mesh %s: %w", rec.ID, err)
	}
	ent.record = rec
	return nil
}

func (e *Engine) forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.meshes, id)
	e.metrics.SetMeshesLoaded(len(e.meshes))
}

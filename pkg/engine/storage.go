package engine

import (
	"context"
	"time"

	"github.com/edgy/edgy/pkg/storage"
)

// observedStorage records the duration and result of every storage call.
type observedStorage struct {
	next    storage.Storage
	backend string
	metrics MetricsRecorder
}

func storageResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case storage.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

func (s *observedStorage) observe(method string, start time.Time, err error) {
	s.metrics.RecordStorageRequest(s.backend, method, storageResult(err), time.Since(start))
}

func (s *observedStorage) SaveMesh(ctx context.Context, rec *storage.MeshRecord) error {
	start := time.Now()
	err := s.next.SaveMesh(ctx, rec)
	s.observe("save_mesh", start, err)
	return err
}

func (s *observedStorage) GetMesh(ctx context.Context, id string) (*storage.MeshRecord, error) {
	start := time.Now()
	rec, err := s.next.GetMesh(ctx, id)
	s.observe("get_mesh", start, err)
	return rec, err
}

func (s *observedStorage) ListMeshes(ctx context.Context, filter *storage.MeshFilter) ([]*storage.MeshRecord, int, error) {
	start := time.Now()
	recs, total, err := s.next.ListMeshes(ctx, filter)
	s.observe("list_meshes", start, err)
	return recs, total, err
}

func (s *observedStorage) DeleteMesh(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteMesh(ctx, id)
	s.observe("delete_mesh", start, err)
	return err
}

func (s *observedStorage) SaveSelection(ctx context.Context, meshID string, rec *storage.SelectionRecord) error {
	start := time.Now()
	err := s.next.SaveSelection(ctx, meshID, rec)
	s.observe("save_selection", start, err)
	return err
}

func (s *observedStorage) GetSelection(ctx context.Context, meshID, name string) (*storage.SelectionRecord, error) {
	start := time.Now()
	rec, err := s.next.GetSelection(ctx, meshID, name)
	s.observe("get_selection", start, err)
	return rec, err
}

func (s *observedStorage) ListSelections(ctx context.Context, meshID string) ([]*storage.SelectionRecord, error) {
	start := time.Now()
	recs, err := s.next.ListSelections(ctx, meshID)
	s.observe("list_selections", start, err)
	return recs, err
}

func (s *observedStorage) Close() error {
	return s.next.Close()
}

// Package memory provides an in-memory implementation of the storage interface.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/edgy/edgy/pkg/storage"
)

// MemoryStorage implements the Storage interface using in-memory maps.
type MemoryStorage struct {
	mu         sync.RWMutex
	meshes     map[string]*storage.MeshRecord
	selections map[string]map[string]*storage.SelectionRecord // meshID -> name -> record
}

// NewMemoryStorage creates a new in-memory storage instance.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		meshes:     make(map[string]*storage.MeshRecord),
		selections: make(map[string]map[string]*storage.SelectionRecord),
	}
}

// SaveMesh saves a mesh to memory.
func (m *MemoryStorage) SaveMesh(ctx context.Context, rec *storage.MeshRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.meshes[rec.ID]; ok {
		rec.CreatedAt = existing.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	m.meshes[rec.ID] = storage.CloneMesh(rec)
	return nil
}

// GetMesh retrieves a mesh by ID.
func (m *MemoryStorage) GetMesh(ctx context.Context, id string) (*storage.MeshRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.meshes[id]
	if !exists {
		return nil, &storage.NotFoundError{
			EntityType: "mesh",
			ID:         id,
		}
	}
	return storage.CloneMesh(rec), nil
}

// ListMeshes lists meshes with optional filtering and pagination.
func (m *MemoryStorage) ListMeshes(ctx context.Context, filter *storage.MeshFilter) ([]*storage.MeshRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*storage.MeshRecord
	for _, rec := range m.meshes {
		if filter.Match(rec) {
			matched = append(matched, storage.CloneMesh(rec))
		}
	}

	page, total := storage.Paginate(matched, filter)
	return page, total, nil
}

// DeleteMesh deletes a mesh and all its saved selections.
func (m *MemoryStorage) DeleteMesh(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.meshes[id]; !exists {
		return &storage.NotFoundError{
			EntityType: "mesh",
			ID:         id,
		}
	}

	delete(m.meshes, id)
	delete(m.selections, id)
	return nil
}

// SaveSelection saves a named selection under a mesh.
func (m *MemoryStorage) SaveSelection(ctx context.Context, meshID string, rec *storage.SelectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.meshes[meshID]; !exists {
		return &storage.NotFoundError{
			EntityType: "mesh",
			ID:         meshID,
		}
	}

	if m.selections[meshID] == nil {
		m.selections[meshID] = make(map[string]*storage.SelectionRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.selections[meshID][rec.Name] = storage.CloneSelection(rec)
	return nil
}

// GetSelection retrieves a named selection.
func (m *MemoryStorage) GetSelection(ctx context.Context, meshID, name string) (*storage.SelectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.meshes[meshID]; !exists {
		return nil, &storage.NotFoundError{
			EntityType: "mesh",
			ID:         meshID,
		}
	}

	rec, exists := m.selections[meshID][name]
	if !exists {
		return nil, &storage.NotFoundError{
			EntityType: "selection",
			ID:         name,
		}
	}
	return storage.CloneSelection(rec), nil
}

// ListSelections lists the saved selections of a mesh by name.
func (m *MemoryStorage) ListSelections(ctx context.Context, meshID string) ([]*storage.SelectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.meshes[meshID]; !exists {
		return nil, &storage.NotFoundError{
			EntityType: "mesh",
			ID:         meshID,
		}
	}

	result := make([]*storage.SelectionRecord, 0, len(m.selections[meshID]))
	for _, rec := range m.selections[meshID] {
		result = append(result, storage.CloneSelection(rec))
	}
	storage.SortSelections(result)
	return result, nil
}

// Close closes the storage (no-op for memory storage).
func (m *MemoryStorage) Close() error {
	return nil
}

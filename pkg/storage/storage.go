// Package storage provides persistent storage abstraction for meshes and
// their saved selections.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/selection"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Mesh operations
	SaveMesh(ctx context.Context, rec *MeshRecord) error
	GetMesh(ctx context.Context, id string) (*MeshRecord, error)
	ListMeshes(ctx context.Context, filter *MeshFilter) ([]*MeshRecord, int, error)
	DeleteMesh(ctx context.Context, id string) error

	// Named selection operations
	SaveSelection(ctx context.Context, meshID string, rec *SelectionRecord) error
	GetSelection(ctx context.Context, meshID, name string) (*SelectionRecord, error)
	ListSelections(ctx context.Context, meshID string) ([]*SelectionRecord, error)

	// Lifecycle
	Close() error
}

// MeshRecord is the persisted form of a mesh: its topology and its current
// selection.
type MeshRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Document  memory.Document `json:"document"`
	State     selection.State `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SelectionRecord is a named selection saved under a mesh.
type SelectionRecord struct {
	Name      string          `json:"name"`
	State     selection.State `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

// MeshFilter defines filtering options for listing meshes.
type MeshFilter struct {
	Name   string `json:"name,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Match reports whether rec passes the filter's name check.
func (f *MeshFilter) Match(rec *MeshRecord) bool {
	return f == nil || f.Name == "" || f.Name == rec.Name
}

// Paginate sorts records oldest first and cuts the filter's page out of
// them. The returned count is the total before pagination.
func Paginate(records []*MeshRecord, filter *MeshFilter) ([]*MeshRecord, int) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	total := len(records)
	if filter == nil || filter.Limit <= 0 {
		return records, total
	}

	start := filter.Offset
	end := filter.Offset + filter.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return records[start:end], total
}

// SortSelections orders selection records by name.
func SortSelections(records []*SelectionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
}

// NotFoundError indicates that the requested entity was not found.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// DuplicateKeyError indicates that an entity with the given ID already exists.
type DuplicateKeyError struct {
	EntityType string
	ID         string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.EntityType, e.ID)
}

// StorageUnavailableError indicates that the storage backend is unavailable.
type StorageUnavailableError struct {
	Cause error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Cause)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Cause
}

// SerializationError indicates a failure in data serialization/deserialization.
type SerializationError struct {
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error during %s: %v", e.Operation, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

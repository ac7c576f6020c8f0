package memory

import (
	"context"
	"testing"

	"github.com/edgy/edgy/pkg/storage"
)

// TestMemoryStorageSuite runs the full storage test suite against MemoryStorage.
func TestMemoryStorageSuite(t *testing.T) {
	suite := &storage.StorageTestSuite{
		NewStorage: func(t *testing.T) storage.Storage {
			return NewMemoryStorage()
		},
	}

	suite.RunAllTests(t)
}

func TestMemoryStorage_SaveCopiesInput(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	rec := storage.NewTestMesh("mesh-1", "grid")
	if err := s.SaveMesh(ctx, rec); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}

	// Mutate after saving
	rec.Name = "changed"
	rec.State.Edges[0] = 7

	retrieved, err := s.GetMesh(ctx, "mesh-1")
	if err != nil {
		t.Fatalf("GetMesh failed: %v", err)
	}
	if retrieved.Name != "grid" {
		t.Errorf("Expected Name grid, got %s", retrieved.Name)
	}
	if retrieved.State.Edges[0] != 0 {
		t.Errorf("Expected stored edge 0, got %d", retrieved.State.Edges[0])
	}
}

func TestMemoryStorage_SelectionCopies(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	if err := s.SaveMesh(ctx, storage.NewTestMesh("mesh-1", "grid")); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}
	rec := &storage.SelectionRecord{Name: "row"}
	rec.State.Edges = []int{0, 4}
	if err := s.SaveSelection(ctx, "mesh-1", rec); err != nil {
		t.Fatalf("SaveSelection failed: %v", err)
	}

	got, err := s.GetSelection(ctx, "mesh-1", "row")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	got.State.Edges[0] = 9

	again, err := s.GetSelection(ctx, "mesh-1", "row")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	if again.State.Edges[0] != 0 {
		t.Errorf("Expected stored edge 0, got %d", again.State.Edges[0])
	}
}

func TestMemoryStorage_GetSelection_MissingMesh(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.GetSelection(context.Background(), "nope", "row")
	if !storage.IsNotFound(err) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestMemoryStorage_Close(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

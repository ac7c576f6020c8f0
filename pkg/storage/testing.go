package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/selection"
)

// StorageTestSuite defines a test suite that can be run against any Storage implementation.
type StorageTestSuite struct {
	NewStorage func(t *testing.T) Storage
}

// RunAllTests runs all storage tests against the provided storage implementation.
func (s *StorageTestSuite) RunAllTests(t *testing.T) {
	t.Run("MeshCRUD", s.TestMeshCRUD)
	t.Run("DocumentRoundTrip", s.TestDocumentRoundTrip)
	t.Run("SelectionPersistence", s.TestSelectionPersistence)
	t.Run("ListMeshesWithFilter", s.TestListMeshesWithFilter)
	t.Run("ListMeshesWithPagination", s.TestListMeshesWithPagination)
	t.Run("DeleteMeshCascade", s.TestDeleteMeshCascade)
	t.Run("ConcurrentAccess", s.TestConcurrentAccess)
	t.Run("MeshNotFound", s.TestMeshNotFound)
	t.Run("SelectionNotFound", s.TestSelectionNotFound)
}

// NewTestMesh returns a record holding a 3x3 grid with its top row selected.
func NewTestMesh(id, name string) *MeshRecord {
	return &MeshRecord{
		ID:       id,
		Name:     name,
		Document: *memory.GridDocument(3, 3),
		State: selection.State{
			Mode:   mesh.EdgeMode,
			Verts:  []int{0, 1, 2},
			Edges:  []int{0, 4},
			Faces:  []int{},
			Active: mesh.Element{Kind: mesh.KindEdge, ID: 4},
		},
	}
}

// TestMeshCRUD tests basic mesh CRUD operations.
func (s *StorageTestSuite) TestMeshCRUD(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	rec := NewTestMesh("mesh-1", "grid")
	if err := store.SaveMesh(ctx, rec); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("expected SaveMesh to stamp CreatedAt and UpdatedAt")
	}

	retrieved, err := store.GetMesh(ctx, "mesh-1")
	if err != nil {
		t.Fatalf("GetMesh failed: %v", err)
	}
	if retrieved.ID != rec.ID {
		t.Errorf("expected ID %s, got %s", rec.ID, retrieved.ID)
	}
	if retrieved.Name != rec.Name {
		t.Errorf("expected Name %s, got %s", rec.Name, retrieved.Name)
	}
	if !retrieved.State.Equal(rec.State) {
		t.Errorf("expected state %+v, got %+v", rec.State, retrieved.State)
	}

	// Update
	created := retrieved.CreatedAt
	retrieved.State.Edges = []int{0}
	retrieved.State.Active = mesh.NoElement
	if err := store.SaveMesh(ctx, retrieved); err != nil {
		t.Fatalf("SaveMesh (update) failed: %v", err)
	}

	updated, err := store.GetMesh(ctx, "mesh-1")
	if err != nil {
		t.Fatalf("GetMesh (after update) failed: %v", err)
	}
	if len(updated.State.Edges) != 1 {
		t.Errorf("expected 1 selected edge, got %v", updated.State.Edges)
	}
	if !updated.State.Active.IsNone() {
		t.Errorf("expected no active element, got %+v", updated.State.Active)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt %v to survive update, got %v", created, updated.CreatedAt)
	}

	if err := store.DeleteMesh(ctx, "mesh-1"); err != nil {
		t.Fatalf("DeleteMesh failed: %v", err)
	}
	if _, err := store.GetMesh(ctx, "mesh-1"); err == nil {
		t.Error("expected error when getting deleted mesh")
	}
}

// TestDocumentRoundTrip checks that a stored document still builds the same
// mesh.
func (s *StorageTestSuite) TestDocumentRoundTrip(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	rec := NewTestMesh("mesh-doc", "torus")
	rec.Document = *memory.TorusDocument(4, 4)
	if err := store.SaveMesh(ctx, rec); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}

	retrieved, err := store.GetMesh(ctx, "mesh-doc")
	if err != nil {
		t.Fatalf("GetMesh failed: %v", err)
	}

	m, err := memory.New(&retrieved.Document)
	if err != nil {
		t.Fatalf("stored document does not build: %v", err)
	}
	if m.NumVerts() != 16 || m.NumEdges() != 32 || m.NumFaces() != 16 {
		t.Errorf("expected 16/32/16 elements, got %d/%d/%d", m.NumVerts(), m.NumEdges(), m.NumFaces())
	}

	// Mutating the returned record must not reach the store.
	retrieved.Document.Faces[0][0] = 99
	again, err := store.GetMesh(ctx, "mesh-doc")
	if err != nil {
		t.Fatalf("GetMesh failed: %v", err)
	}
	if again.Document.Faces[0][0] == 99 {
		t.Error("store shares document memory with callers")
	}
}

// TestSelectionPersistence tests named selection save and retrieval.
func (s *StorageTestSuite) TestSelectionPersistence(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SaveMesh(ctx, NewTestMesh("mesh-1", "grid")); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}

	for _, name := range []string{"rim", "row"} {
		rec := &SelectionRecord{
			Name: name,
			State: selection.State{
				Mode:   mesh.EdgeMode,
				Verts:  []int{0, 1},
				Edges:  []int{0},
				Faces:  []int{},
				Active: mesh.NoElement,
			},
		}
		if err := store.SaveSelection(ctx, "mesh-1", rec); err != nil {
			t.Fatalf("SaveSelection(%s) failed: %v", name, err)
		}
	}

	got, err := store.GetSelection(ctx, "mesh-1", "row")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	if got.Name != "row" || len(got.State.Edges) != 1 {
		t.Errorf("unexpected selection %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	all, err := store.ListSelections(ctx, "mesh-1")
	if err != nil {
		t.Fatalf("ListSelections failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "rim" || all[1].Name != "row" {
		t.Errorf("expected [rim row], got %d selections", len(all))
	}

	// Saving under a name again replaces the record.
	replaced := &SelectionRecord{Name: "row", State: selection.State{Mode: mesh.VertMode, Verts: []int{4}}}
	if err := store.SaveSelection(ctx, "mesh-1", replaced); err != nil {
		t.Fatalf("SaveSelection (replace) failed: %v", err)
	}
	got, err = store.GetSelection(ctx, "mesh-1", "row")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	if !got.State.Mode.Vert || len(got.State.Verts) != 1 {
		t.Errorf("expected replaced selection, got %+v", got.State)
	}

	if err := store.SaveSelection(ctx, "missing", replaced); !IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing mesh, got %v", err)
	}
}

// TestListMeshesWithFilter tests filtering meshes by name.
func (s *StorageTestSuite) TestListMeshesWithFilter(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	names := []string{"grid", "torus", "grid", "strip"}
	for i, name := range names {
		if err := store.SaveMesh(ctx, NewTestMesh(fmt.Sprintf("mesh-%d", i), name)); err != nil {
			t.Fatalf("SaveMesh failed: %v", err)
		}
	}

	meshes, total, err := store.ListMeshes(ctx, &MeshFilter{Name: "grid"})
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if total != 2 || len(meshes) != 2 {
		t.Errorf("expected 2 grid meshes, got %d (total %d)", len(meshes), total)
	}
	for _, rec := range meshes {
		if rec.Name != "grid" {
			t.Errorf("filter let through %q", rec.Name)
		}
	}

	meshes, total, err = store.ListMeshes(ctx, nil)
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if total != len(names) || len(meshes) != len(names) {
		t.Errorf("expected %d meshes, got %d (total %d)", len(names), len(meshes), total)
	}
}

// TestListMeshesWithPagination tests pagination of mesh listings.
func (s *StorageTestSuite) TestListMeshesWithPagination(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		rec := NewTestMesh(fmt.Sprintf("mesh-%02d", i), "grid")
		rec.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := store.SaveMesh(ctx, rec); err != nil {
			t.Fatalf("SaveMesh failed: %v", err)
		}
	}

	page, total, err := store.ListMeshes(ctx, &MeshFilter{Limit: 3, Offset: 0})
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if total != 10 {
		t.Errorf("expected total 10, got %d", total)
	}
	if len(page) != 3 || page[0].ID != "mesh-00" || page[2].ID != "mesh-02" {
		t.Errorf("unexpected first page")
	}

	page, _, err = store.ListMeshes(ctx, &MeshFilter{Limit: 3, Offset: 9})
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "mesh-09" {
		t.Errorf("expected last page to hold mesh-09")
	}

	page, _, err = store.ListMeshes(ctx, &MeshFilter{Limit: 3, Offset: 20})
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(page))
	}
}

// TestDeleteMeshCascade tests that deleting a mesh removes its selections.
func (s *StorageTestSuite) TestDeleteMeshCascade(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SaveMesh(ctx, NewTestMesh("mesh-1", "grid")); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}
	if err := store.SaveSelection(ctx, "mesh-1", &SelectionRecord{Name: "row"}); err != nil {
		t.Fatalf("SaveSelection failed: %v", err)
	}

	if err := store.DeleteMesh(ctx, "mesh-1"); err != nil {
		t.Fatalf("DeleteMesh failed: %v", err)
	}

	// Recreate under the same id: the old selections must be gone.
	if err := store.SaveMesh(ctx, NewTestMesh("mesh-1", "grid")); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}
	selections, err := store.ListSelections(ctx, "mesh-1")
	if err != nil {
		t.Fatalf("ListSelections failed: %v", err)
	}
	if len(selections) != 0 {
		t.Errorf("expected selections to be deleted with the mesh, got %d", len(selections))
	}
}

// TestConcurrentAccess tests concurrent saves and reads.
func (s *StorageTestSuite) TestConcurrentAccess(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("mesh-%d", i)
			if err := store.SaveMesh(ctx, NewTestMesh(id, "grid")); err != nil {
				errs <- err
				return
			}
			if _, err := store.GetMesh(ctx, id); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	_, total, err := store.ListMeshes(ctx, nil)
	if err != nil {
		t.Fatalf("ListMeshes failed: %v", err)
	}
	if total != 20 {
		t.Errorf("expected 20 meshes, got %d", total)
	}
}

// TestMeshNotFound tests errors for unknown meshes.
func (s *StorageTestSuite) TestMeshNotFound(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	if _, err := store.GetMesh(ctx, "nope"); !IsNotFound(err) {
		t.Errorf("GetMesh: expected NotFoundError, got %v", err)
	}
	if err := store.DeleteMesh(ctx, "nope"); !IsNotFound(err) {
		t.Errorf("DeleteMesh: expected NotFoundError, got %v", err)
	}
	if _, err := store.ListSelections(ctx, "nope"); !IsNotFound(err) {
		t.Errorf("ListSelections: expected NotFoundError, got %v", err)
	}
}

// TestSelectionNotFound tests errors for unknown selections.
func (s *StorageTestSuite) TestSelectionNotFound(t *testing.T) {
	store := s.NewStorage(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.SaveMesh(ctx, NewTestMesh("mesh-1", "grid")); err != nil {
		t.Fatalf("SaveMesh failed: %v", err)
	}

	_, err := store.GetSelection(ctx, "mesh-1", "nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.EntityType != "selection" || nf.ID != "nope" {
		t.Errorf("unexpected error %v", nf)
	}
}

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edgy/edgy/config"
	"github.com/edgy/edgy/pkg/logger"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/ops"
	"github.com/edgy/edgy/pkg/selection"
	"github.com/edgy/edgy/pkg/storage"
	memstore "github.com/edgy/edgy/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	nopMetrics

	mu         sync.Mutex
	operations []string
	searches   []string
	storage    []string
}

func (r *recordingMetrics) RecordOperation(operation, status, level string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, operation+":"+status+":"+level)
}

func (r *recordingMetrics) RecordLoopSearch(kind string, _ []int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, kind)
}

func (r *recordingMetrics) RecordStorageRequest(backend, method, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append(r.storage, backend+":"+method+":"+result)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memstore.MemoryStorage) {
	t.Helper()

	store := memstore.NewMemoryStorage()
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	eng, err := New(config.DefaultConfig(), store, opts...)
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	t.Cleanup(func() { _ = eng.Stop(context.Background()) })
	return eng, store
}

func createGrid(t *testing.T, eng *Engine, cols, rows int) string {
	t.Helper()
	info, err := eng.CreateMesh(context.Background(), "grid", memory.GridDocument(cols, rows))
	require.NoError(t, err)
	return info.ID
}

// gridEdge returns the id of the edge a-b in a cols x rows grid. Ids depend
// only on the document, so a fresh grid gives the same ids as a stored one.
func gridEdge(t *testing.T, cols, rows, a, b int) int {
	t.Helper()
	e, ok := mesh.EdgeBetween(memory.Grid(cols, rows), a, b)
	require.True(t, ok, "no edge %d-%d", a, b)
	return e
}

func edgeState(edges ...int) selection.State {
	return selection.State{Mode: mesh.EdgeMode, Edges: edges, Active: mesh.NoElement}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, memstore.NewMemoryStorage())
	assert.Error(t, err)

	_, err = New(config.DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestEngine_Lifecycle(t *testing.T) {
	eng, err := New(config.DefaultConfig(), memstore.NewMemoryStorage(), WithLogger(logger.Discard()))
	require.NoError(t, err)
	ctx := context.Background()

	assert.False(t, eng.IsHealthy())
	assert.Equal(t, "idle", eng.GetStatus().State)

	_, err = eng.CreateMesh(ctx, "grid", memory.GridDocument(3, 3))
	var notRunning *EngineNotRunningError
	assert.ErrorAs(t, err, &notRunning)

	require.NoError(t, eng.Start(ctx))
	assert.True(t, eng.IsHealthy())
	assert.True(t, eng.IsReady())
	assert.Error(t, eng.Start(ctx), "second start")

	status := eng.GetStatus()
	assert.Equal(t, "running", status.State)
	assert.Equal(t, "memory", status.Storage)
	assert.Equal(t, 10, status.MaxLoops)
	assert.NotEmpty(t, status.Uptime)

	require.NoError(t, eng.Stop(ctx))
	require.NoError(t, eng.Stop(ctx))
	assert.False(t, eng.IsHealthy())
	assert.Equal(t, "stopped", eng.GetStatus().State)

	_, err = eng.PureLoops(ctx, "any")
	assert.ErrorAs(t, err, &notRunning)
}

func TestEngine_CreateAndGetMesh(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	created, err := eng.CreateMesh(ctx, "", &memory.Document{
		Name:  "quad",
		Verts: 4,
		Faces: [][]int{{0, 1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "quad", created.Name, "name falls back to the document name")
	assert.Equal(t, 4, created.Verts)
	assert.Equal(t, 4, created.Edges)
	assert.Equal(t, 1, created.Faces)
	assert.Equal(t, "vert", created.Mode)

	got, err := eng.GetMesh(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	rec, err := store.GetMesh(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Document.Verts)
	assert.True(t, rec.State.IsEmpty())

	doc, err := eng.Document(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, doc.Faces)
}

func TestEngine_CreateMeshRejectsInvalidDocument(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateMesh(ctx, "bad", &memory.Document{Verts: 2, Faces: [][]int{{0, 1, 5}}})
	var invalid *mesh.InvalidDocumentError
	assert.ErrorAs(t, err, &invalid)

	_, err = eng.CreateMesh(ctx, "nil", nil)
	var badReq *InvalidRequestError
	assert.ErrorAs(t, err, &badReq)
}

func TestEngine_MeshNotFound(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.GetMesh(context.Background(), "missing")
	assert.True(t, storage.IsNotFound(err))
}

func TestEngine_LoadsStoredMesh(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, store.SaveMesh(ctx, storage.NewTestMesh("stored", "grid")))

	view, err := eng.SelectionInfo(ctx, "stored")
	require.NoError(t, err)

	assert.Equal(t, mesh.EdgeMode, view.State.Mode)
	assert.Equal(t, []int{0, 4}, view.State.Edges)
	assert.Equal(t, mesh.Element{Kind: mesh.KindEdge, ID: 4}, view.State.Active)
	assert.Equal(t, 1, eng.GetStatus().LoadedMeshes)
}

func TestEngine_PureLoops(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)

	loops, err := eng.PureLoops(context.Background(), id)
	require.NoError(t, err)

	require.Len(t, loops, 6)
	seen := map[int]bool{}
	for _, l := range loops {
		assert.Len(t, l.Edges, 2)
		assert.Len(t, l.Verts, 3)
		assert.False(t, l.Closed)
		for _, e := range l.Edges {
			assert.False(t, seen[e], "edge %d in two loops", e)
			seen[e] = true
		}
	}
	assert.Len(t, seen, 12)
}

func TestEngine_EdgeLoops(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 4, 4)
	ctx := context.Background()

	loops, err := eng.EdgeLoops(ctx, id, gridEdge(t, 4, 4, 4, 5))
	require.NoError(t, err)

	sizes := make([]int, len(loops))
	for i, l := range loops {
		sizes[i] = len(l)
	}
	assert.Equal(t, []int{3, 8, 10}, sizes)

	_, err = eng.EdgeLoops(ctx, id, 999)
	var notFound *mesh.ElementNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_SetMaxLoops(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 6, 6)
	edge := gridEdge(t, 6, 6, 13, 14)

	eng.SetMaxLoops(1)
	loops, err := eng.EdgeLoops(context.Background(), id, edge)
	require.NoError(t, err)
	assert.Len(t, loops, 2)

	eng.ApplyHotReload(config.HotReloadableConfig{MaxLoops: 3, DisableFaceBias: true})
	assert.Equal(t, 3, eng.GetStatus().MaxLoops)
	assert.True(t, eng.disableFaceBias.Load())

	eng.SetMaxLoops(0)
	assert.Equal(t, 10, eng.GetStatus().MaxLoops)
}

func TestEngine_ShortestPath(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	res, err := eng.ShortestPath(ctx, id, 0, 8, nil)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Len(t, res.Verts, 5)
	assert.Len(t, res.Edges, 4)
	assert.Equal(t, 0, res.Verts[0])
	assert.Equal(t, 8, res.Verts[4])

	res, err = eng.ShortestPath(ctx, id, 0, 8, []int{gridEdge(t, 3, 3, 0, 1), gridEdge(t, 3, 3, 0, 3)})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Verts)

	_, err = eng.ShortestPath(ctx, id, 0, 42, nil)
	var notFound *mesh.ElementNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_SetSelectionPersists(t *testing.T) {
	eng, store := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()
	top := gridEdge(t, 3, 3, 0, 1)

	view, err := eng.SetSelection(ctx, id, edgeState(top))
	require.NoError(t, err)
	assert.Equal(t, []int{top}, view.State.Edges)
	assert.Equal(t, []int{0, 1}, view.Info.Endpoints)

	rec, err := store.GetMesh(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{top}, rec.State.Edges)

	// A second engine over the same storage sees the stored selection.
	other, err := New(config.DefaultConfig(), store, WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, other.Start(ctx))
	defer other.Stop(ctx)

	view, err = other.SelectionInfo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{top}, view.State.Edges)
}

func TestEngine_SetSelectionRejectsUnknownIDs(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	_, err := eng.SetSelection(ctx, id, edgeState(99))
	var notFound *mesh.ElementNotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = eng.SetSelection(ctx, id, selection.State{})
	var badReq *InvalidRequestError
	assert.ErrorAs(t, err, &badReq)
}

func TestEngine_CloseLoop(t *testing.T) {
	eng, store := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	_, err := eng.SetSelection(ctx, id, edgeState(gridEdge(t, 3, 3, 4, 5), gridEdge(t, 3, 3, 4, 7)))
	require.NoError(t, err)

	res, err := eng.CloseLoop(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ops.Finished, res.Outcome.Status)
	assert.Equal(t, "Closed 1 loop(s)", res.Outcome.Message)
	assert.Len(t, res.Selection.State.Edges, 4)
	assert.Empty(t, res.Selection.Info.Endpoints)

	rec, err := store.GetMesh(ctx, id)
	require.NoError(t, err)
	assert.Len(t, rec.State.Edges, 4)
}

func TestEngine_CancelledOperationIsNotStored(t *testing.T) {
	eng, store := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	before, err := store.GetMesh(ctx, id)
	require.NoError(t, err)

	res, err := eng.CloseLoop(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ops.Cancelled, res.Outcome.Status)
	assert.Equal(t, "No edges selected", res.Outcome.Message)

	after, err := store.GetMesh(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestEngine_Resize(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 4, 4)
	ctx := context.Background()

	_, err := eng.SetSelection(ctx, id, selection.State{Mode: mesh.FaceMode, Faces: []int{4}, Active: mesh.NoElement})
	require.NoError(t, err)

	res, err := eng.Resize(ctx, id, ops.Grow, ops.NativeFace)
	require.NoError(t, err)
	assert.Equal(t, "Grew face selection (native)", res.Outcome.Message)
	assert.Len(t, res.Selection.State.Faces, 9)
}

func TestEngine_SelectLoopCycles(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	_, err := eng.SetSelection(ctx, id, edgeState())
	require.NoError(t, err)

	edge := gridEdge(t, 3, 3, 0, 1)
	req := SelectLoopRequest{Edge: &edge}

	res, err := eng.SelectLoop(ctx, id, req)
	require.NoError(t, err)
	assert.Equal(t, "Selected loop 1 of 2 (2 edges)", res.Outcome.Message)

	res, err = eng.SelectLoop(ctx, id, req)
	require.NoError(t, err)
	assert.Equal(t, "Selected loop 2 of 2 (8 edges)", res.Outcome.Message)
	assert.Len(t, res.Selection.State.Edges, 8)

	// Picking by position finds the same edge and keeps cycling.
	res, err = eng.SelectLoop(ctx, id, SelectLoopRequest{SelectLoopRequest: ops.SelectLoopRequest{X: 5, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, "Selected loop 1 of 2 (2 edges)", res.Outcome.Message)

	bad := 500
	_, err = eng.SelectLoop(ctx, id, SelectLoopRequest{Edge: &bad})
	var notFound *mesh.ElementNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_SavedSelections(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()
	top := gridEdge(t, 3, 3, 0, 1)
	left := gridEdge(t, 3, 3, 0, 3)

	_, err := eng.SetSelection(ctx, id, edgeState(top))
	require.NoError(t, err)
	saved, err := eng.SaveSelection(ctx, id, "top")
	require.NoError(t, err)
	assert.Equal(t, "top", saved.Name)

	_, err = eng.SetSelection(ctx, id, edgeState(left))
	require.NoError(t, err)

	view, err := eng.RestoreSelection(ctx, id, "top")
	require.NoError(t, err)
	assert.Equal(t, []int{top}, view.State.Edges)

	list, err := eng.ListSelections(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "top", list[0].Name)

	_, err = eng.RestoreSelection(ctx, id, "missing")
	assert.True(t, storage.IsNotFound(err))

	_, err = eng.SaveSelection(ctx, id, "")
	var badReq *InvalidRequestError
	assert.ErrorAs(t, err, &badReq)
}

func TestEngine_DeleteMesh(t *testing.T) {
	eng, store := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	_, err := eng.SaveSelection(ctx, id, "empty")
	require.NoError(t, err)

	require.NoError(t, eng.DeleteMesh(ctx, id))

	_, err = eng.GetMesh(ctx, id)
	assert.True(t, storage.IsNotFound(err))
	_, err = store.GetMesh(ctx, id)
	assert.True(t, storage.IsNotFound(err))
	assert.True(t, storage.IsNotFound(eng.DeleteMesh(ctx, id)))
	assert.Equal(t, 0, eng.GetStatus().LoadedMeshes)
}

func TestEngine_ListMeshes(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	createGrid(t, eng, 3, 3)
	createGrid(t, eng, 4, 4)
	_, err := eng.CreateMesh(ctx, "torus", memory.TorusDocument(4, 4))
	require.NoError(t, err)

	all, total, err := eng.ListMeshes(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	tori, total, err := eng.ListMeshes(ctx, &storage.MeshFilter{Name: "torus"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tori, 1)
	assert.Equal(t, 32, tori[0].Edges)
}

func TestEngine_MeshBusy(t *testing.T) {
	eng, _ := newTestEngine(t)
	id := createGrid(t, eng, 3, 3)

	ent, err := eng.entry(context.Background(), id)
	require.NoError(t, err)
	ent.lock <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = eng.GetMesh(ctx, id)
	var busy *MeshBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, id, busy.MeshID)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	<-ent.lock
	_, err = eng.GetMesh(context.Background(), id)
	assert.NoError(t, err)
}

func TestEngine_ConcurrentOperations(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ids := []string{createGrid(t, eng, 4, 4), createGrid(t, eng, 4, 4)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ids[i%2]
			if _, err := eng.PureLoops(ctx, id); err != nil {
				t.Errorf("PureLoops: %v", err)
			}
			if _, err := eng.Resize(ctx, id, ops.Grow, ops.Automatic); err != nil {
				t.Errorf("Resize: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestEngine_RecordsMetrics(t *testing.T) {
	rec := &recordingMetrics{}
	eng, _ := newTestEngine(t, WithMetrics(rec), WithStorageBackend("test"))
	id := createGrid(t, eng, 3, 3)
	ctx := context.Background()

	_, err := eng.CloseLoop(ctx, id)
	require.NoError(t, err)
	_, err = eng.PureLoops(ctx, id)
	require.NoError(t, err)
	_, err = eng.GetMesh(ctx, "missing")
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"close_loop:cancelled:warning"}, rec.operations)
	assert.Contains(t, rec.searches, "pure_loops")
	assert.Contains(t, rec.storage, "test:save_mesh:ok")
	assert.Contains(t, rec.storage, "test:get_mesh:not_found")
}

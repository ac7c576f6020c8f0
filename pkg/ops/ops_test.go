package ops

import (
	"context"
	"errors"
	"testing"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edgeID(t *testing.T, g mesh.Graph, a, b int) int {
	t.Helper()
	e, ok := mesh.EdgeBetween(g, a, b)
	require.True(t, ok, "no edge between %d and %d", a, b)
	return e
}

func selectPairs(t *testing.T, m *memory.Mesh, pairs ...[2]int) {
	t.Helper()
	for _, p := range pairs {
		m.SetEdgeSelected(edgeID(t, m, p[0], p[1]), true)
	}
	m.FlushSelection()
}

func edgeSetOf(t *testing.T, g mesh.Graph, pairs ...[2]int) []int {
	t.Helper()
	ids := make([]int, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, edgeID(t, g, p[0], p[1]))
	}
	return []int(loop.NewEdgeSet(ids...))
}

// ringAround returns the eight edges around the 2x2 block of quads centred
// on vertex (2, 2) of a 5x5 grid.
func ringAround() [][2]int {
	return [][2]int{
		{6, 7}, {7, 8}, {8, 13}, {13, 18},
		{18, 17}, {17, 16}, {16, 11}, {11, 6},
	}
}

func perimeter5x5() [][2]int {
	var pairs [][2]int
	for i := 0; i < 4; i++ {
		pairs = append(pairs,
			[2]int{i, i + 1},
			[2]int{20 + i, 21 + i},
			[2]int{i * 5, (i + 1) * 5},
			[2]int{i*5 + 4, (i+1)*5 + 4},
		)
	}
	return pairs
}

type failingNative struct {
	*memory.Mesh
	err error
}

func (f failingNative) SelectMore(bool) error { return f.err }
func (f failingNative) SelectLess(bool) error { return f.err }
func (f failingNative) LoopToRegion() error { return f.err }
func (f failingNative) LoopSelect(int, int, bool) error { return f.err }

func TestCloseLoop_LShape(t *testing.T) {
	m := memory.Grid(3, 3)
	m.SetSelectMode(mesh.EdgeMode)
	selectPairs(t, m, [2]int{4, 5}, [2]int{4, 7})

	out := CloseLoop(context.Background(), m)

	assert.Equal(t, Finished, out.Status)
	assert.Equal(t, Info, out.Level)
	assert.Equal(t, "Closed 1 loop(s)", out.Message)
	assert.Equal(t,
		edgeSetOf(t, m, [2]int{4, 5}, [2]int{4, 7}, [2]int{5, 8}, [2]int{8, 7}),
		mesh.SelectedEdges(m))
}

func TestCloseLoop_VertexMode(t *testing.T) {
	m := memory.Grid(3, 3)
	for _, v := range []int{4, 5, 7} {
		m.SetVertSelected(v, true)
	}
	m.FlushSelection()

	out := CloseLoop(context.Background(), m)

	require.Equal(t, Finished, out.Status)
	assert.True(t, m.VertSelected(8))
	assert.Len(t, mesh.SelectedEdges(m), 4)
}

func TestCloseLoop_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		pairs   [][2]int
		message string
	}{
		{
			name:    "nothing selected",
			message: "No edges selected",
		},
		{
			name:    "closed loop",
			pairs:   [][2]int{{0, 1}, {1, 4}, {4, 3}, {3, 0}},
			message: "Cannot close loop: not an open loop",
		},
		{
			name:    "branching",
			pairs:   [][2]int{{1, 4}, {3, 4}, {4, 5}},
			message: "Cannot close loop: not an open loop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := memory.Grid(3, 3)
			m.SetSelectMode(mesh.EdgeMode)
			selectPairs(t, m, tt.pairs...)
			before := selection.Capture(m)

			out := CloseLoop(context.Background(), m)

			assert.Equal(t, Cancelled, out.Status)
			assert.Equal(t, Warning, out.Level)
			assert.Equal(t, tt.message, out.Message)
			assert.True(t, selection.Capture(m).Equal(before), "selection must be untouched")
		})
	}
}

func TestCloseLoop_NoPathRestores(t *testing.T) {
	m := memory.Strip(2)
	m.SetSelectMode(mesh.EdgeMode)
	selectPairs(t, m, [2]int{0, 1}, [2]int{1, 2})
	before := selection.Capture(m)

	out := CloseLoop(context.Background(), m)

	assert.Equal(t, Cancelled, out.Status)
	assert.Equal(t, "Could not find clean closures", out.Message)
	assert.True(t, selection.Capture(m).Equal(before))
}

func TestCloseLoop_SkipsClosedIsland(t *testing.T) {
	m := memory.Grid(5, 5)
	m.SetSelectMode(mesh.EdgeMode)
	// An open corner in the top left and a closed quad in the bottom right.
	selectPairs(t, m, [2]int{5, 6}, [2]int{6, 1})
	selectPairs(t, m, [2]int{18, 19}, [2]int{19, 24}, [2]int{24, 23}, [2]int{23, 18})

	out := CloseLoop(context.Background(), m)

	assert.Equal(t, "Closed 1 loop(s)", out.Message)
	assert.True(t, m.EdgeSelected(edgeID(t, m, 0, 1)))
	assert.True(t, m.EdgeSelected(edgeID(t, m, 0, 5)))
}

func TestResizeSelection_Native(t *testing.T) {
	m := memory.Grid(4, 4)
	m.SetSelectMode(mesh.FaceMode)
	m.SetFaceSelected(4, true)
	m.FlushSelection()

	out := ResizeSelection(context.Background(), m, m, Grow, NativeFace)
	assert.Equal(t, "Grew face selection (native)", out.Message)
	assert.Len(t, mesh.SelectedFaces(m), 9)

	out = ResizeSelection(context.Background(), m, m, Shrink, NativeEdge)
	assert.Equal(t, "Shrank edge selection (native)", out.Message)
	assert.Equal(t, Finished, out.Status)
}

func TestResizeSelection_NothingSelected(t *testing.T) {
	m := memory.Grid(3, 3)
	for _, dir := range []Direction{Grow, Shrink} {
		out := ResizeSelection(context.Background(), m, m, dir, Automatic)
		assert.Equal(t, Finished, out.Status)
		assert.Equal(t, Warning, out.Level)
		assert.Equal(t, "No vertices selected", out.Message)
	}
}

func TestResizeSelection_GrowFaces(t *testing.T) {
	m := memory.Grid(4, 4)
	m.SetSelectMode(mesh.FaceMode)
	m.SetFaceSelected(4, true)
	m.FlushSelection()

	out := ResizeSelection(context.Background(), m, m, Grow, Automatic)

	assert.Equal(t, "Grew face selection", out.Message)
	assert.Len(t, mesh.SelectedFaces(m), 9)
}

func TestResizeSelection_GrowBoundary(t *testing.T) {
	m := memory.Grid(5, 5)
	m.SetSelectMode(mesh.EdgeMode)
	selectPairs(t, m, ringAround()...)

	out := ResizeSelection(context.Background(), m, m, Grow, Automatic)
	require.Equal(t, "Grew boundary selection", out.Message)
	assert.Equal(t, edgeSetOf(t, m, perimeter5x5()...), mesh.SelectedEdges(m))

	out = ResizeSelection(context.Background(), m, m, Grow, Boundaries)
	assert.Equal(t, Finished, out.Status)
	assert.Equal(t, Warning, out.Level)
	assert.Equal(t, "Can't grow boundary selection", out.Message)
}

func TestResizeSelection_ShrinkBoundary(t *testing.T) {
	m := memory.Grid(5, 5)
	m.SetSelectMode(mesh.EdgeMode)
	selectPairs(t, m, perimeter5x5()...)

	out := ResizeSelection(context.Background(), m, m, Shrink, Automatic)
	require.Equal(t, "Shrank boundary selection", out.Message)
	assert.Equal(t, edgeSetOf(t, m, ringAround()...), mesh.SelectedEdges(m))

	before := selection.Capture(m)
	out = ResizeSelection(context.Background(), m, m, Shrink, Automatic)
	assert.Equal(t, Finished, out.Status)
	assert.Equal(t, Warning, out.Level)
	assert.Equal(t, "Can't shrink selection (no vertices would remain)", out.Message)
	assert.True(t, selection.Capture(m).Equal(before), "selection must be restored")
}

func TestResizeSelection_ShrinkOpenBoundary(t *testing.T) {
	m := memory.Grid(3, 3)
	m.SetSelectMode(mesh.EdgeMode)
	selectPairs(t, m, [2]int{0, 1})

	out := ResizeSelection(context.Background(), m, m, Shrink, Boundaries)
	assert.Equal(t, "Can't shrink boundary selection", out.Message)
	assert.Equal(t, Warning, out.Level)
	assert.True(t, m.EdgeSelected(edgeID(t, m, 0, 1)))
}

func TestResizeSelection_HostError(t *testing.T) {
	m := memory.Grid(4, 4)
	m.SetSelectMode(mesh.FaceMode)
	m.SetFaceSelected(4, true)
	m.FlushSelection()
	before := selection.Capture(m)

	native := failingNative{Mesh: m, err: errors.New("host refused")}
	out := ResizeSelection(context.Background(), m, native, Grow, Faces)

	assert.Equal(t, Cancelled, out.Status)
	assert.Equal(t, "host refused", out.Message)
	assert.True(t, selection.Capture(m).Equal(before))
}

func TestParseResizeMode(t *testing.T) {
	for m, name := range resizeModeNames {
		got, err := ParseResizeMode(name)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseResizeMode("sideways")
	assert.Error(t, err)

	d, err := ParseDirection("shrink")
	require.NoError(t, err)
	assert.Equal(t, Shrink, d)
}

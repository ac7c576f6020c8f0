package selection

import (
	"encoding/json"
	"testing"

	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/mesh/memory"
)

func TestCaptureRestore_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		mode   mesh.SelectMode
		setup  func(m *memory.Mesh)
		active mesh.Element
	}{
		{
			name: "vertex mode",
			mode: mesh.VertMode,
			setup: func(m *memory.Mesh) {
				for _, v := range []int{0, 1, 3, 4, 8} {
					m.SetVertSelected(v, true)
				}
			},
			active: mesh.Element{Kind: mesh.KindVert, ID: 8},
		},
		{
			name: "edge mode",
			mode: mesh.EdgeMode,
			setup: func(m *memory.Mesh) {
				for _, e := range []int{0, 4, 7} {
					m.SetEdgeSelected(e, true)
				}
			},
			active: mesh.Element{Kind: mesh.KindEdge, ID: 4},
		},
		{
			name: "face mode",
			mode: mesh.FaceMode,
			setup: func(m *memory.Mesh) {
				m.SetFaceSelected(0, true)
				m.SetFaceSelected(3, true)
			},
			active: mesh.Element{Kind: mesh.KindFace, ID: 3},
		},
		{
			name: "no active element",
			mode: mesh.EdgeMode,
			setup: func(m *memory.Mesh) {
				m.SetEdgeSelected(2, true)
			},
			active: mesh.NoElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := memory.Grid(3, 3)
			m.SetSelectMode(tt.mode)
			tt.setup(m)
			m.FlushSelection()
			m.SetActiveElement(tt.active)

			saved := Capture(m)

			m.SetSelectMode(mesh.VertMode)
			mesh.DeselectAll(m)
			m.SetVertSelected(6, true)
			m.FlushSelection()
			m.SetActiveElement(mesh.Element{Kind: mesh.KindVert, ID: 6})

			saved.Restore(m)
			got := Capture(m)
			if !got.Equal(saved) {
				t.Errorf("expected %+v after restore, got %+v", saved, got)
			}
		})
	}
}

func TestRestore_StaleActiveElement(t *testing.T) {
	m := memory.Grid(3, 3)
	state := State{
		Mode:   mesh.EdgeMode,
		Edges:  []int{0},
		Active: mesh.Element{Kind: mesh.KindEdge, ID: 500},
	}
	m.SetActiveElement(mesh.Element{Kind: mesh.KindVert, ID: 1})

	state.Restore(m)
	if !m.ActiveElement().IsNone() {
		t.Errorf("expected no active element, got %+v", m.ActiveElement())
	}
	if !m.EdgeSelected(0) {
		t.Error("expected edge 0 to be selected")
	}
}

func TestRestore_WritesPrimaryKindOnly(t *testing.T) {
	m := memory.Grid(3, 3)
	// The vertex list wins in vertex+edge mode, the edge list is ignored.
	state := State{
		Mode:  mesh.SelectMode{Vert: true, Edge: true},
		Verts: []int{0, 1},
		Edges: []int{11},
	}
	state.Restore(m)

	e01, _ := mesh.EdgeBetween(m, 0, 1)
	if !m.EdgeSelected(e01) {
		t.Error("expected edge between selected verts to be selected")
	}
	if m.EdgeSelected(11) {
		t.Error("expected edge list to be ignored in vertex mode")
	}
}

func TestState_JSON(t *testing.T) {
	state := State{
		Mode:   mesh.FaceMode,
		Verts:  []int{},
		Edges:  []int{},
		Faces:  []int{2},
		Active: mesh.Element{Kind: mesh.KindFace, ID: 2},
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Equal(state) {
		t.Errorf("expected %+v, got %+v", state, decoded)
	}
}

func TestState_Equal(t *testing.T) {
	base := State{
		Mode:   mesh.EdgeMode,
		Edges:  []int{1, 4},
		Active: mesh.Element{Kind: mesh.KindEdge, ID: 4},
	}

	tests := []struct {
		name  string
		other State
		want  bool
	}{
		{"identical", base, true},
		{"empty lists match missing ones", State{Mode: mesh.EdgeMode, Verts: []int{}, Edges: []int{1, 4}, Faces: []int{}, Active: base.Active}, true},
		{"different order", State{Mode: mesh.EdgeMode, Edges: []int{4, 1}, Active: base.Active}, false},
		{"extra edge", State{Mode: mesh.EdgeMode, Edges: []int{1, 4, 5}, Active: base.Active}, false},
		{"different mode", State{Mode: mesh.FaceMode, Edges: []int{1, 4}, Active: base.Active}, false},
		{"no active element", State{Mode: mesh.EdgeMode, Edges: []int{1, 4}, Active: mesh.NoElement}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

package selection

import (
	"slices"

	"github.com/edgy/edgy/pkg/mesh"
)

// State is a saved selection: mode, selected ids of every kind and the
// active element.
type State struct {
	Mode   mesh.SelectMode `json:"mode"`
	Verts  []int           `json:"verts"`
	Edges  []int           `json:"edges"`
	Faces  []int           `json:"faces"`
	Active mesh.Element    `json:"active"`
}

// Capture saves the current selection of ed.
func Capture(ed mesh.Editable) State {
	return State{
		Mode:   ed.SelectMode(),
		Verts:  orEmpty(mesh.SelectedVerts(ed)),
		Edges:  orEmpty(mesh.SelectedEdges(ed)),
		Faces:  orEmpty(mesh.SelectedFaces(ed)),
		Active: ed.ActiveElement(),
	}
}

// Restore applies s to ed. Only the flags of the kind driving the saved mode
// are written; the host derives the rest. An active element that no longer
// exists is dropped.
func (s State) Restore(ed mesh.Editable) {
	ed.SetSelectMode(s.Mode)

	switch {
	case s.Mode.Vert:
		set := toSet(s.Verts)
		for v := 0; v < ed.NumVerts(); v++ {
			ed.SetVertSelected(v, set[v])
		}
	case s.Mode.Edge:
		set := toSet(s.Edges)
		for e := 0; e < ed.NumEdges(); e++ {
			ed.SetEdgeSelected(e, set[e])
		}
	default:
		set := toSet(s.Faces)
		for f := 0; f < ed.NumFaces(); f++ {
			ed.SetFaceSelected(f, set[f])
		}
	}
	ed.FlushSelection()

	ed.SetActiveElement(mesh.NoElement)
	if mesh.ValidElement(ed, s.Active) {
		ed.SetActiveElement(s.Active)
	}
}

// Equal reports whether both states hold the same mode, selection and
// active element.
func (s State) Equal(other State) bool {
	return s.Mode == other.Mode &&
		slices.Equal(s.Verts, other.Verts) &&
		slices.Equal(s.Edges, other.Edges) &&
		slices.Equal(s.Faces, other.Faces) &&
		s.Active == other.Active
}

// IsEmpty reports whether nothing is selected.
func (s State) IsEmpty() bool {
	return len(s.Verts) == 0 && len(s.Edges) == 0 && len(s.Faces) == 0
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func orEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

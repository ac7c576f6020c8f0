package storage

import (
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/selection"
)

// CloneMesh returns a deep copy of rec.
func CloneMesh(rec *MeshRecord) *MeshRecord {
	if rec == nil {
		return nil
	}
	clone := *rec
	clone.Document = cloneDocument(rec.Document)
	clone.State = cloneState(rec.State)
	return &clone
}

// CloneSelection returns a deep copy of rec.
func CloneSelection(rec *SelectionRecord) *SelectionRecord {
	if rec == nil {
		return nil
	}
	clone := *rec
	clone.State = cloneState(rec.State)
	return &clone
}

func cloneDocument(doc memory.Document) memory.Document {
	clone := doc
	clone.Faces = cloneNested(doc.Faces)
	clone.Wires = cloneNested(doc.Wires)
	clone.Coords = cloneNested(doc.Coords)
	return clone
}

func cloneState(st selection.State) selection.State {
	clone := st
	clone.Verts = cloneInts(st.Verts)
	clone.Edges = cloneInts(st.Edges)
	clone.Faces = cloneInts(st.Faces)
	return clone
}

func cloneInts(ids []int) []int {
	if ids == nil {
		return nil
	}
	return append([]int(nil), ids...)
}

func cloneNested[T any](rows [][]T) [][]T {
	if rows == nil {
		return nil
	}
	clone := make([][]T, len(rows))
	for i, row := range rows {
		clone[i] = append([]T(nil), row...)
	}
	return clone
}

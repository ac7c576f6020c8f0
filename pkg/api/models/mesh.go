// Package models defines API request/response data structures.
package models

import (
	"fmt"

	"github.com/edgy/edgy/pkg/engine"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/storage"
)

// CreateMeshRequest creates a mesh from a document or from one of the
// built-in generators. Exactly one source must be given.
type CreateMeshRequest struct {
	// Name overrides the document name.
	Name string `json:"name,omitempty" validate:"max=128"`

	Document *memory.Document `json:"document,omitempty"`
	Grid     *GridRequest     `json:"grid,omitempty"`
	Torus    *GridRequest     `json:"torus,omitempty"`
}

// GridRequest sizes a generated grid or torus in vertices.
type GridRequest struct {
	Cols int `json:"cols" validate:"min=2,max=1024"`
	Rows int `json:"rows" validate:"min=2,max=1024"`
}

// Source returns the document the request describes.
func (r *CreateMeshRequest) Source() (*memory.Document, error) {
	n := 0
	for _, set := range []bool{r.Document != nil, r.Grid != nil, r.Torus != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("exactly one of document, grid or torus is required")
	}

	switch {
	case r.Grid != nil:
		return memory.GridDocument(r.Grid.Cols, r.Grid.Rows), nil
	case r.Torus != nil:
		if r.Torus.Cols < 3 || r.Torus.Rows < 3 {
			return nil, fmt.Errorf("torus needs at least 3 columns and rows")
		}
		return memory.TorusDocument(r.Torus.Cols, r.Torus.Rows), nil
	default:
		return r.Document, nil
	}
}

// MeshListResponse is a page of meshes.
type MeshListResponse struct {
	Meshes []*engine.MeshInfo `json:"meshes"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// MeshResponse is a mesh summary, with its document when requested.
type MeshResponse struct {
	*engine.MeshInfo
	Document *memory.Document `json:"document,omitempty"`
}

// LoopsResponse lists the pure edge loops of a mesh.
type LoopsResponse struct {
	Loops []engine.LoopInfo `json:"loops"`
	Count int               `json:"count"`
}

// EdgeLoopsResponse lists the loop completions through an edge, shortest
// first.
type EdgeLoopsResponse struct {
	Edge  int     `json:"edge"`
	Loops [][]int `json:"loops"`
}

// ResizeRequest grows or shrinks the selection.
type ResizeRequest struct {
	Direction string `json:"direction" validate:"omitempty,oneof=grow shrink"`
	Mode      string `json:"mode" validate:"omitempty,oneof=automatic boundaries faces native_face native_edge"`
}

// SelectLoopRequest is a click for loop selection. Edge names the clicked
// edge directly; without it the mesh picks the edge nearest to X, Y.
type SelectLoopRequest struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Edge   *int   `json:"edge,omitempty" validate:"omitempty,min=0"`
	Extend bool   `json:"extend"`
	Mode   string `json:"mode" validate:"omitempty,oneof=smart native"`
}

// SelectionListResponse lists the saved selections of a mesh.
type SelectionListResponse struct {
	Selections []*storage.SelectionRecord `json:"selections"`
}

package engine

import (
	"context"
	"time"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/metrics"
	"github.com/edgy/edgy/pkg/path"
	"github.com/edgy/edgy/pkg/selection"
	"go.opentelemetry.io/otel/attribute"
)

// LoopInfo is one pure edge loop.
type LoopInfo struct {
	Verts  []int `json:"verts"`
	Edges  []int `json:"edges"`
	Closed bool  `json:"closed"`
}

// PathResult is the outcome of a shortest path query.
type PathResult struct {
	Found bool  `json:"found"`
	Verts []int `json:"verts"`
	Edges []int `json:"edges"`
}

// SelectionView is the selection of a mesh with its edge analysis.
type SelectionView struct {
	State selection.State             `json:"state"`
	Info  selection.EdgeSelectionInfo `json:"info"`
}

func selectionView(m *memory.Mesh) *SelectionView {
	return &SelectionView{
		State: selection.Capture(m),
		Info:  selection.Analyze(m),
	}
}

func checkEdge(g mesh.Graph, edge int) error {
	if !mesh.ValidElement(g, mesh.Element{Kind: mesh.KindEdge, ID: edge}) {
		return &mesh.ElementNotFoundError{Kind: mesh.KindEdge, ID: edge}
	}
	return nil
}

func checkVert(g mesh.Graph, v int) error {
	if !mesh.ValidElement(g, mesh.Element{Kind: mesh.KindVert, ID: v}) {
		return &mesh.ElementNotFoundError{Kind: mesh.KindVert, ID: v}
	}
	return nil
}

// PureLoops partitions the edges of the mesh into pure edge loops.
func (e *Engine) PureLoops(ctx context.Context, id string) ([]LoopInfo, error) {
	ctx, span := engineTracer().Start(ctx, spanPureLoops)
	defer span.End()
	span.SetAttributes(attribute.String("edgy.mesh_id", id))

	var out []LoopInfo
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		start := time.Now()
		loops := loop.PureEdgeLoops(ent.mesh)

		sizes := make([]int, len(loops))
		out = make([]LoopInfo, len(loops))
		for i, l := range loops {
			sizes[i] = l.Len()
			out[i] = LoopInfo{Verts: l.Vertices(), Edges: l.Edges(), Closed: l.IsClosed()}
		}
		e.metrics.RecordLoopSearch(metrics.SearchPureLoops, sizes, time.Since(start))
		span.SetAttributes(attribute.Int("edgy.loops", len(loops)))
		return nil
	})
	return out, err
}

// EdgeLoops returns the closed loops through edge, shortest first.
func (e *Engine) EdgeLoops(ctx context.Context, id string, edge int) ([][]int, error) {
	ctx, span := engineTracer().Start(ctx, spanEdgeLoops)
	defer span.End()
	span.SetAttributes(attribute.String("edgy.mesh_id", id), attribute.Int("edgy.edge", edge))

	var out [][]int
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		if err := checkEdge(ent.mesh, edge); err != nil {
			return err
		}

		start := time.Now()
		sets := loop.EdgeLoops(ent.mesh, edge, e.searchOptions())

		sizes := make([]int, len(sets))
		out = make([][]int, len(sets))
		for i, s := range sets {
			sizes[i] = s.Len()
			out[i] = append([]int(nil), s...)
		}
		e.metrics.RecordLoopSearch(metrics.SearchEdgeLoops, sizes, time.Since(start))
		span.SetAttributes(attribute.Int("edgy.loops", len(sets)))
		return nil
	})
	return out, err
}

// ShortestPath finds a shortest path between two vertices that avoids the
// excluded edges.
func (e *Engine) ShortestPath(ctx context.Context, id string, from, to int, exclude []int) (*PathResult, error) {
	ctx, span := engineTracer().Start(ctx, spanShortestPath)
	defer span.End()
	span.SetAttributes(attribute.String("edgy.mesh_id", id))

	var out *PathResult
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		for _, v := range []int{from, to} {
			if err := checkVert(ent.mesh, v); err != nil {
				return err
			}
		}
		for _, edge := range exclude {
			if err := checkEdge(ent.mesh, edge); err != nil {
				return err
			}
		}

		start := time.Now()
		verts, found := path.FindShortestPathWithOptions(ent.mesh, from, to, loop.NewEdgeSet(exclude...), path.Options{
			DisableFaceBias: e.disableFaceBias.Load(),
		})
		e.metrics.RecordPathSearch(found, len(verts), time.Since(start))

		out = &PathResult{Found: found, Verts: []int{}, Edges: []int{}}
		if found {
			out.Verts = verts
			out.Edges = pathEdges(ent.mesh, verts)
		}
		return nil
	})
	return out, err
}

func pathEdges(g mesh.Graph, verts []int) []int {
	edges := make([]int, 0, len(verts))
	for i := 1; i < len(verts); i++ {
		if e, ok := mesh.EdgeBetween(g, verts[i-1], verts[i]); ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// SelectionInfo returns the current selection and its edge analysis.
func (e *Engine) SelectionInfo(ctx context.Context, id string) (*SelectionView, error) {
	var out *SelectionView
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		out = selectionView(ent.mesh)
		return nil
	})
	return out, err
}

// SetSelection replaces the selection of the mesh and stores it.
func (e *Engine) SetSelection(ctx context.Context, id string, state selection.State) (*SelectionView, error) {
	ctx, span := engineTracer().Start(ctx, spanSetSelection)
	defer span.End()

	var out *SelectionView
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		if err := checkState(ent.mesh, state); err != nil {
			return err
		}
		state.Restore(ent.mesh)
		if err := e.persist(ctx, ent); err != nil {
			return err
		}
		out = selectionView(ent.mesh)
		return nil
	})
	return out, err
}

// checkState rejects ids of the kind that drives the state's mode when they
// do not exist. Ids of the other kinds are derived on restore.
func checkState(g mesh.Graph, s selection.State) error {
	if !s.Mode.Vert && !s.Mode.Edge && !s.Mode.Face {
		return &InvalidRequestError{Field: "mode", Reason: "at least one select mode is required"}
	}

	kind := s.Mode.Primary()
	ids := s.Faces
	switch kind {
	case mesh.KindVert:
		ids = s.Verts
	case mesh.KindEdge:
		ids = s.Edges
	}
	for _, id := range ids {
		if !mesh.ValidElement(g, mesh.Element{Kind: kind, ID: id}) {
			return &mesh.ElementNotFoundError{Kind: kind, ID: id}
		}
	}
	return nil
}

// Package loop detects pure edge loops in a mesh and searches for the
// shortest closed loops that can be stitched together from them.
package loop

import (
	"fmt"

	"github.com/edgy/edgy/pkg/mesh"
)

// PureEdgeLoop is a chain of edges where no interior vertex is a pole and
// no two consecutive edges share a face. Values are immutable.
type PureEdgeLoop struct {
	verts []int
	edges []int
	set   EdgeSet
}

func newPureEdgeLoop(verts, edges []int) PureEdgeLoop {
	return PureEdgeLoop{
		verts: verts,
		edges: edges,
		set:   NewEdgeSet(edges...),
	}
}

// Vertices returns the ordered vertex ids.
func (l PureEdgeLoop) Vertices() []int {
	return append([]int(nil), l.verts...)
}

// Edges returns the ordered edge ids. Edge i joins vertex i and i+1.
func (l PureEdgeLoop) Edges() []int {
	return append([]int(nil), l.edges...)
}

// EdgeSet returns the loop's edges as a set.
func (l PureEdgeLoop) EdgeSet() EdgeSet {
	return append(EdgeSet(nil), l.set...)
}

// Len returns the number of edges.
func (l PureEdgeLoop) Len() int {
	return len(l.edges)
}

// Start returns the first vertex.
func (l PureEdgeLoop) Start() int {
	return l.verts[0]
}

// End returns the last vertex.
func (l PureEdgeLoop) End() int {
	return l.verts[len(l.verts)-1]
}

// IsClosed reports whether the loop returns to its first vertex.
func (l PureEdgeLoop) IsClosed() bool {
	return len(l.verts) > 1 && l.verts[0] == l.verts[len(l.verts)-1]
}

// Reverse returns the same loop walked in the opposite direction.
func (l PureEdgeLoop) Reverse() PureEdgeLoop {
	verts := make([]int, len(l.verts))
	for i, v := range l.verts {
		verts[len(verts)-1-i] = v
	}
	edges := make([]int, len(l.edges))
	for i, e := range l.edges {
		edges[len(edges)-1-i] = e
	}
	return PureEdgeLoop{verts: verts, edges: edges, set: l.set}
}

// Equal reports whether both loops cover the same edges, regardless of
// direction or starting point.
func (l PureEdgeLoop) Equal(other PureEdgeLoop) bool {
	return l.set.Equal(other.set)
}

func (l PureEdgeLoop) String() string {
	kind := "open"
	if l.IsClosed() {
		kind = "closed"
	}
	return fmt.Sprintf("%s loop %v via %v", kind, l.verts, l.edges)
}

// IsPole reports whether v ends pure loops: its edge count, plus one for a
// boundary and one for a wire vertex, differs from four.
func IsPole(g mesh.Graph, v int) bool {
	n := len(g.VertEdges(v))
	if g.IsBoundary(v) {
		n++
	}
	if g.IsWire(v) {
		n++
	}
	return n != 4
}

// StopSet holds vertices where FindLoop ends a walk early.
type StopSet map[int]struct{}

// NewStopSet builds a stop set from vertex ids.
func NewStopSet(verts ...int) StopSet {
	s := make(StopSet, len(verts))
	for _, v := range verts {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set. A nil set holds nothing.
func (s StopSet) Has(v int) bool {
	_, ok := s[v]
	return ok
}

// FindLoop walks from start across edge and keeps going while the head
// vertex is not a pole and not in stop. At each vertex it takes the first
// incident edge that shares no face with the edge it arrived on.
// The walk is closed when it would take edge again.
func FindLoop(g mesh.Graph, edge, start int, stop StopSet) PureEdgeLoop {
	return walk(g, edge, start, stop, nil)
}

// walk is FindLoop with an extra dead end: the walk also ends when the edge
// it would take next is claimed.
func walk(g mesh.Graph, edge, start int, stop StopSet, claimed []bool) PureEdgeLoop {
	verts := []int{start}
	edges := []int{edge}
	prev := edge
	head := g.OtherVert(edge, start)

	for {
		verts = append(verts, head)
		if IsPole(g, head) || stop.Has(head) {
			break
		}
		next := -1
		for _, e := range g.VertEdges(head) {
			if !mesh.EdgesShareFace(g, e, prev) && e != prev {
				next = e
				break
			}
		}
		// len(edges) bounds walks that enter a cycle not through edge,
		// which only non-manifold topology produces.
		if next < 0 || next == edge || len(edges) >= g.NumEdges() {
			break
		}
		if claimed != nil && claimed[next] {
			break
		}
		edges = append(edges, next)
		head = g.OtherVert(next, head)
		prev = next
	}
	return newPureEdgeLoop(verts, edges)
}

// PureEdgeLoopOf returns the maximal pure loop that contains edge. When the
// loop is open it is oriented so that edge comes first if possible.
func PureEdgeLoopOf(g mesh.Graph, edge int) PureEdgeLoop {
	return pureLoopOf(g, edge, nil)
}

func pureLoopOf(g mesh.Graph, edge int, claimed []bool) PureEdgeLoop {
	a, _ := g.EdgeVerts(edge)
	forward := walk(g, edge, a, nil, claimed)
	if forward.IsClosed() {
		return forward
	}
	full := walk(g, forward.edges[len(forward.edges)-1], forward.End(), nil, claimed)
	if full.edges[len(full.edges)-1] == edge {
		full = full.Reverse()
	}
	return full
}

// PureEdgeLoops partitions every edge of g into pure loops. Loops starting
// at poles come first, in ascending vertex order, followed by the maximal
// loops of the remaining edges in ascending edge order. A walk ends before
// an edge that an earlier loop already holds.
func PureEdgeLoops(g mesh.Graph) []PureEdgeLoop {
	visited := make([]bool, g.NumEdges())
	var loops []PureEdgeLoop

	take := func(l PureEdgeLoop) {
		for _, e := range l.edges {
			visited[e] = true
		}
		loops = append(loops, l)
	}

	for v := 0; v < g.NumVerts(); v++ {
		if !IsPole(g, v) {
			continue
		}
		for _, e := range g.VertEdges(v) {
			if !visited[e] {
				take(walk(g, e, v, nil, visited))
			}
		}
	}
	for e := 0; e < g.NumEdges(); e++ {
		// Away from poles a walk can stop at a boundary vertex before
		// covering the loop, so extend it in both directions.
		if !visited[e] {
			take(pureLoopOf(g, e, visited))
		}
	}
	return loops
}

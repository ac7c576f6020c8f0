// Package path finds short paths between mesh vertices that avoid a set of
// edges.
package path

import (
	"container/list"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
)

// Options tunes FindShortestPathWithOptions.
type Options struct {
	// DisableFaceBias expands neighbours in plain adjacency order.
	DisableFaceBias bool
}

type entry struct {
	vert int
	// edge is the edge the path arrived on, -1 at the start.
	edge int
	path []int
}

// FindShortestPath returns a path with the fewest edges from start to end
// that uses none of the excluded edges. The path lists vertex ids, start and
// end included. Among equally short paths it prefers ones that turn away
// from the faces of the previous edge, which follows loops more naturally.
func FindShortestPath(g mesh.Graph, start, end int, exclude loop.EdgeSet) ([]int, bool) {
	return FindShortestPathWithOptions(g, start, end, exclude, Options{})
}

// FindShortestPathWithOptions is FindShortestPath with explicit options.
func FindShortestPathWithOptions(g mesh.Graph, start, end int, exclude loop.EdgeSet, opts Options) ([]int, bool) {
	searched := make(map[int]bool)
	queue := list.New()
	queue.PushBack(entry{vert: start, edge: -1})

	for queue.Len() > 0 {
		elem := queue.Front()
		queue.Remove(elem)
		cur := elem.Value.(entry)

		if searched[cur.vert] {
			continue
		}
		searched[cur.vert] = true

		path := make([]int, len(cur.path), len(cur.path)+1)
		copy(path, cur.path)
		path = append(path, cur.vert)
		if cur.vert == end {
			return path, true
		}

		var sharing []entry
		for _, e := range g.VertEdges(cur.vert) {
			if exclude.Contains(e) {
				continue
			}
			next := entry{vert: g.OtherVert(e, cur.vert), edge: e, path: path}
			if !opts.DisableFaceBias && cur.edge >= 0 && mesh.EdgesShareFace(g, e, cur.edge) {
				sharing = append(sharing, next)
				continue
			}
			queue.PushBack(next)
		}
		for _, next := range sharing {
			queue.PushBack(next)
		}
	}
	return nil, false
}

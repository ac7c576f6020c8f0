package loop

import (
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/emirpasic/gods/queues/priorityqueue"
)

// DefaultMaxLoops is the result cap used when SearchOptions leaves it unset.
const DefaultMaxLoops = 10

// SearchOptions tunes EdgeLoops.
type SearchOptions struct {
	// MaxLoops stops the search once more than this many loops are found.
	MaxLoops int
}

// DefaultSearchOptions returns the options used by the operations.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{MaxLoops: DefaultMaxLoops}
}

func (o SearchOptions) maxLoops() int {
	if o.MaxLoops <= 0 {
		return DefaultMaxLoops
	}
	return o.MaxLoops
}

// SearchNode is a partial chain of pure loops in the completion search.
// Nodes order by Length, then EndVertex.
type SearchNode struct {
	Length    int
	EndVertex int
	Segments  []PureEdgeLoop
}

func (n SearchNode) uses(edge int) bool {
	for _, seg := range n.Segments {
		if seg.set.Contains(edge) {
			return true
		}
	}
	return false
}

func (n SearchNode) edgeSet() EdgeSet {
	var out EdgeSet
	for _, seg := range n.Segments {
		out = out.Union(seg.set)
	}
	return out
}

// CompareSearchNodes orders nodes by length and then by end vertex.
func CompareSearchNodes(a, b interface{}) int {
	na := a.(SearchNode)
	nb := b.(SearchNode)
	switch {
	case na.Length < nb.Length:
		return -1
	case na.Length > nb.Length:
		return 1
	case na.EndVertex < nb.EndVertex:
		return -1
	case na.EndVertex > nb.EndVertex:
		return 1
	default:
		return 0
	}
}

// EdgeLoops returns closed loops through edge, shortest first. The first
// entry is always the pure loop of edge. If that loop is open, the search
// extends its far end with further pure loops until the chain returns to
// the start vertex.
func EdgeLoops(g mesh.Graph, edge int, opts SearchOptions) []EdgeSet {
	pure := PureEdgeLoopOf(g, edge)
	if pure.IsClosed() {
		return []EdgeSet{pure.EdgeSet()}
	}

	limit := opts.maxLoops()
	stop := NewStopSet(pure.Start())
	visited := make(map[int]bool)
	results := []EdgeSet{pure.EdgeSet()}

	queue := priorityqueue.NewWith(CompareSearchNodes)
	queue.Enqueue(SearchNode{
		Length:    pure.Len(),
		EndVertex: pure.End(),
		Segments:  []PureEdgeLoop{pure},
	})

	for !queue.Empty() {
		if len(results) > limit {
			break
		}
		value, _ := queue.Dequeue()
		node := value.(SearchNode)

		if node.EndVertex == pure.Start() {
			set := node.edgeSet()
			if !containsSet(results, set) {
				results = append(results, set)
			}
			continue
		}
		if visited[node.EndVertex] {
			continue
		}
		visited[node.EndVertex] = true

		for _, e := range g.VertEdges(node.EndVertex) {
			if node.uses(e) {
				continue
			}
			seg := FindLoop(g, e, node.EndVertex, stop)
			segments := make([]PureEdgeLoop, len(node.Segments), len(node.Segments)+1)
			copy(segments, node.Segments)
			queue.Enqueue(SearchNode{
				Length:    node.Length + seg.Len(),
				EndVertex: seg.End(),
				Segments:  append(segments, seg),
			})
		}
	}
	return results
}

func containsSet(sets []EdgeSet, s EdgeSet) bool {
	for _, other := range sets {
		if other.Equal(s) {
			return true
		}
	}
	return false
}

package loop_test

import (
	"testing"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh/memory"
)

func TestEdgeLoops_ClosedPureLoop(t *testing.T) {
	g := memory.Torus(4, 4)
	e := edgeBetween(t, g, 0, 1)

	results := loop.EdgeLoops(g, e, loop.DefaultSearchOptions())
	if len(results) != 1 {
		t.Fatalf("expected exactly one loop, got %d", len(results))
	}
	want := loop.PureEdgeLoopOf(g, e).EdgeSet()
	if !results[0].Equal(want) {
		t.Errorf("expected %v, got %v", want, results[0])
	}
}

func TestEdgeLoops_Perimeter(t *testing.T) {
	g := memory.Grid(3, 3)
	e := edgeBetween(t, g, 0, 1)

	results := loop.EdgeLoops(g, e, loop.DefaultSearchOptions())
	if len(results) != 2 {
		t.Fatalf("expected 2 loops, got %d: %v", len(results), results)
	}
	if results[0].Len() != 2 {
		t.Errorf("expected the top row first, got %v", results[0])
	}
	if results[1].Len() != 8 {
		t.Errorf("expected the 8-edge perimeter, got %v", results[1])
	}
}

func TestEdgeLoops_MiddleRow(t *testing.T) {
	g := memory.Grid(4, 4)
	e := edgeBetween(t, g, 4, 5)

	results := loop.EdgeLoops(g, e, loop.DefaultSearchOptions())

	wantSizes := []int{3, 8, 10}
	if len(results) != len(wantSizes) {
		t.Fatalf("expected %d loops, got %d: %v", len(wantSizes), len(results), results)
	}
	for i, n := range wantSizes {
		if results[i].Len() != n {
			t.Errorf("loop %d: expected %d edges, got %v", i, n, results[i])
		}
	}

	pure := results[0]
	for i, r := range results[1:] {
		for _, edge := range pure {
			if !r.Contains(edge) {
				t.Errorf("loop %d does not contain pure loop edge %d", i+1, edge)
			}
		}
	}
}

func TestEdgeLoops_OrderedWithoutDuplicates(t *testing.T) {
	g := memory.Grid(5, 5)

	for e := 0; e < g.NumEdges(); e++ {
		results := loop.EdgeLoops(g, e, loop.DefaultSearchOptions())
		if !results[0].Equal(loop.PureEdgeLoopOf(g, e).EdgeSet()) {
			t.Errorf("edge %d: first result is not the pure loop", e)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Len() < results[i-1].Len() {
				t.Errorf("edge %d: result %d is shorter than result %d", e, i, i-1)
			}
			for j := 0; j < i; j++ {
				if results[i].Equal(results[j]) {
					t.Errorf("edge %d: results %d and %d are equal", e, i, j)
				}
			}
		}
	}
}

func TestEdgeLoops_MaxLoops(t *testing.T) {
	g := memory.Grid(6, 6)
	e := edgeBetween(t, g, 13, 14)

	all := loop.EdgeLoops(g, e, loop.SearchOptions{MaxLoops: 100})
	if len(all) < 3 {
		t.Fatalf("expected several loops, got %d", len(all))
	}

	capped := loop.EdgeLoops(g, e, loop.SearchOptions{MaxLoops: 1})
	if len(capped) != 2 {
		t.Errorf("expected the cap to stop after 2 results, got %d", len(capped))
	}

	defaulted := loop.EdgeLoops(g, e, loop.SearchOptions{})
	if len(defaulted) > loop.DefaultMaxLoops+1 {
		t.Errorf("expected at most %d results, got %d", loop.DefaultMaxLoops+1, len(defaulted))
	}
}

func TestCompareSearchNodes(t *testing.T) {
	tests := []struct {
		a, b loop.SearchNode
		want int
	}{
		{loop.SearchNode{Length: 1, EndVertex: 9}, loop.SearchNode{Length: 2, EndVertex: 0}, -1},
		{loop.SearchNode{Length: 2, EndVertex: 0}, loop.SearchNode{Length: 1, EndVertex: 9}, 1},
		{loop.SearchNode{Length: 2, EndVertex: 3}, loop.SearchNode{Length: 2, EndVertex: 4}, -1},
		{loop.SearchNode{Length: 2, EndVertex: 4}, loop.SearchNode{Length: 2, EndVertex: 4}, 0},
	}
	for _, tt := range tests {
		if got := loop.CompareSearchNodes(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareSearchNodes(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

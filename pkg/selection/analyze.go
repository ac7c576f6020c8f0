// Package selection describes the edge selection of a mesh and saves and
// restores complete selection states.
package selection

import (
	"sort"

	"github.com/edgy/edgy/pkg/mesh"
)

// EdgeSelectionInfo describes the shape of the current edge selection.
type EdgeSelectionInfo struct {
	// Islands are connected groups of selected edges. Each island is sorted
	// and islands are ordered by their smallest edge.
	Islands [][]int `json:"islands"`
	// Endpoints are vertices with exactly one selected edge.
	Endpoints []int `json:"endpoints"`
	// Branching are vertices with more than two selected edges.
	Branching []int `json:"branching"`
	// AllSelectedVerts are the selected vertices, including ones without a
	// selected edge.
	AllSelectedVerts []int `json:"all_selected_verts"`
}

// HasEndpoints reports whether the selection has open ends.
func (info EdgeSelectionInfo) HasEndpoints() bool {
	return len(info.Endpoints) > 0
}

// HasBranches reports whether any vertex joins more than two selected edges.
func (info EdgeSelectionInfo) HasBranches() bool {
	return len(info.Branching) > 0
}

// Analyze computes the EdgeSelectionInfo of m.
func Analyze(m mesh.Mesh) EdgeSelectionInfo {
	info := EdgeSelectionInfo{
		Islands:          [][]int{},
		Endpoints:        []int{},
		Branching:        []int{},
		AllSelectedVerts: mesh.SelectedVerts(m),
	}
	if info.AllSelectedVerts == nil {
		info.AllSelectedVerts = []int{}
	}

	selected := mesh.SelectedEdges(m)
	if len(selected) == 0 {
		return info
	}

	vertEdges := make(map[int][]int)
	for _, e := range selected {
		a, b := m.EdgeVerts(e)
		vertEdges[a] = append(vertEdges[a], e)
		vertEdges[b] = append(vertEdges[b], e)
	}
	for v, edges := range vertEdges {
		switch {
		case len(edges) == 1:
			info.Endpoints = append(info.Endpoints, v)
		case len(edges) > 2:
			info.Branching = append(info.Branching, v)
		}
	}
	sort.Ints(info.Endpoints)
	sort.Ints(info.Branching)

	searched := make(map[int]bool, len(selected))
	for _, seed := range selected {
		if searched[seed] {
			continue
		}
		var island []int
		stack := []int{seed}
		searched[seed] = true
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			island = append(island, e)

			a, b := m.EdgeVerts(e)
			for _, v := range [2]int{a, b} {
				for _, next := range vertEdges[v] {
					if !searched[next] {
						searched[next] = true
						stack = append(stack, next)
					}
				}
			}
		}
		sort.Ints(island)
		info.Islands = append(info.Islands, island)
	}
	return info
}

// IslandVerts returns the vertices touched by an island, ascending.
func IslandVerts(g mesh.Graph, island []int) []int {
	seen := make(map[int]bool)
	var verts []int
	for _, e := range island {
		a, b := g.EdgeVerts(e)
		for _, v := range [2]int{a, b} {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	sort.Ints(verts)
	return verts
}

// EndpointsOf returns the endpoints of info that belong to island.
func EndpointsOf(g mesh.Graph, info EdgeSelectionInfo, island []int) []int {
	verts := IslandVerts(g, island)
	var out []int
	for _, v := range info.Endpoints {
		i := sort.SearchInts(verts, v)
		if i < len(verts) && verts[i] == v {
			out = append(out, v)
		}
	}
	return out
}

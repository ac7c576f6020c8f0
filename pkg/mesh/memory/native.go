package memory

import (
	"errors"
	"math"
	"sort"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
)

var (
	// ErrNoCoordinates is returned by pointer-based primitives on meshes
	// without vertex positions.
	ErrNoCoordinates = errors.New("mesh has no vertex positions")

	// ErrNothingUnderPointer is returned when no edge is close to the pointer.
	ErrNothingUnderPointer = errors.New("no edge under pointer")
)

// DeselectAll clears the selection.
func (m *Mesh) DeselectAll() {
	mesh.DeselectAll(m)
}

// SelectMore grows the selection by one step. With faceStep the step crosses
// faces (everything sharing a vertex with the selection), otherwise it
// follows edges.
func (m *Mesh) SelectMore(faceStep bool) error {
	switch m.mode.Primary() {
	case mesh.KindFace:
		verts, edges := m.selectedFaceElements()
		grow := make([]bool, len(m.faces))
		for f := range m.faces {
			if m.faceSel[f] {
				continue
			}
			if faceStep {
				grow[f] = anyOf(m.faces[f], verts)
			} else {
				grow[f] = anyOf(m.faceEdges[f], edges)
			}
		}
		for f, g := range grow {
			if g {
				m.faceSel[f] = true
			}
		}
	case mesh.KindVert, mesh.KindEdge:
		grown := append([]bool(nil), m.vertSel...)
		for v, sel := range m.vertSel {
			if !sel {
				continue
			}
			if faceStep {
				for _, f := range m.vertFaces[v] {
					for _, u := range m.faces[f] {
						grown[u] = true
					}
				}
			}
			for _, e := range m.vertEdges[v] {
				grown[m.OtherVert(e, v)] = true
			}
		}
		m.applyVerts(grown)
	default:
		return nil
	}
	m.FlushSelection()
	return nil
}

// SelectLess shrinks the selection by one step, keeping only elements whose
// whole neighbourhood is selected.
func (m *Mesh) SelectLess(faceStep bool) error {
	switch m.mode.Primary() {
	case mesh.KindFace:
		keep := make([]bool, len(m.faces))
		for f, sel := range m.faceSel {
			if !sel {
				continue
			}
			keep[f] = true
			if faceStep {
				for _, v := range m.faces[f] {
					if !m.vertInterior(v) {
						keep[f] = false
						break
					}
				}
			} else {
				for _, e := range m.faceEdges[f] {
					if !m.edgeInterior(e) {
						keep[f] = false
						break
					}
				}
			}
		}
		copy(m.faceSel, keep)
	case mesh.KindVert, mesh.KindEdge:
		keep := make([]bool, m.numVerts)
		for v, sel := range m.vertSel {
			if !sel || m.boundary[v] {
				continue
			}
			keep[v] = true
			if faceStep {
				for _, f := range m.vertFaces[v] {
					if !allOf(m.faces[f], m.vertSel) {
						keep[v] = false
						break
					}
				}
			}
			for _, e := range m.vertEdges[v] {
				if !m.vertSel[m.OtherVert(e, v)] {
					keep[v] = false
					break
				}
			}
		}
		m.applyVerts(keep)
	default:
		return nil
	}
	m.FlushSelection()
	return nil
}

// LoopToRegion replaces a selected edge loop with the faces it encloses.
// Faces are split into regions that do not cross selected edges; of the
// regions touching the loop, all but the largest are selected.
func (m *Mesh) LoopToRegion() error {
	if len(mesh.SelectedEdges(m)) == 0 {
		return nil
	}

	region := make([]int, len(m.faces))
	for f := range region {
		region[f] = -1
	}
	var sizes []int
	var touches []bool
	for seed := range m.faces {
		if region[seed] >= 0 {
			continue
		}
		id := len(sizes)
		sizes = append(sizes, 0)
		touches = append(touches, false)
		stack := []int{seed}
		region[seed] = id
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sizes[id]++
			for _, e := range m.faceEdges[f] {
				if m.edgeSel[e] {
					touches[id] = true
					continue
				}
				for _, g := range m.edgeFaces[e] {
					if region[g] < 0 {
						region[g] = id
						stack = append(stack, g)
					}
				}
			}
		}
	}

	var candidates []int
	for id, t := range touches {
		if t {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) > 1 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return sizes[candidates[i]] < sizes[candidates[j]]
		})
		candidates = candidates[:len(candidates)-1]
	}
	chosen := make(map[int]bool, len(candidates))
	for _, id := range candidates {
		chosen[id] = true
	}

	for f := range m.faceSel {
		m.faceSel[f] = chosen[region[f]]
	}
	m.flushFromFaces()
	return nil
}

// RegionToLoop replaces a face selection with its boundary edges. In face
// mode the mesh switches to edge mode.
func (m *Mesh) RegionToLoop() error {
	loopEdges := make([]bool, len(m.edges))
	for e, faces := range m.edgeFaces {
		n := 0
		for _, f := range faces {
			if m.faceSel[f] {
				n++
			}
		}
		loopEdges[e] = n == 1
	}

	mesh.DeselectAll(m)
	for e, sel := range loopEdges {
		if sel {
			m.edgeSel[e] = true
			m.vertSel[m.edges[e][0]] = true
			m.vertSel[m.edges[e][1]] = true
		}
	}
	if m.mode.Face {
		m.mode = mesh.EdgeMode
	}
	return nil
}

// LoopSelect selects the pure loop of the edge under the pointer. With
// toggle the loop is added to the selection, or removed when it is already
// fully selected.
func (m *Mesh) LoopSelect(x, y int, toggle bool) error {
	if m.coords == nil {
		return ErrNoCoordinates
	}
	edge, ok := m.PickEdge(x, y)
	if !ok {
		return ErrNothingUnderPointer
	}
	edges := loop.PureEdgeLoopOf(m, edge).Edges()

	sel := true
	if toggle {
		sel = !allOf(edges, m.edgeSel)
	} else {
		mesh.DeselectAll(m)
	}
	for _, e := range edges {
		m.edgeSel[e] = sel
	}
	m.flushFromEdges()
	m.SetActiveElement(mesh.Element{Kind: mesh.KindEdge, ID: edge})
	return nil
}

// PickEdge returns the edge nearest to (x, y) within the pick radius.
// Ties go to the lower edge id.
func (m *Mesh) PickEdge(x, y int) (int, bool) {
	if m.coords == nil {
		return -1, false
	}
	p := [2]float64{float64(x), float64(y)}
	best, bestDist := -1, math.Inf(1)
	for e, ev := range m.edges {
		d := segmentDistance(p, m.coords[ev[0]], m.coords[ev[1]])
		if d < bestDist {
			best, bestDist = e, d
		}
	}
	if best < 0 || bestDist > m.pickRadius {
		return -1, false
	}
	return best, true
}

func segmentDistance(p, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t := 0.0
	if l := dx*dx + dy*dy; l > 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(p[0]-(a[0]+t*dx), p[1]-(a[1]+t*dy))
}

// applyVerts writes a vertex selection in the current mode: vertex flags
// directly, or in edge mode the edges whose endpoints are both set.
func (m *Mesh) applyVerts(verts []bool) {
	if m.mode.Primary() == mesh.KindEdge {
		for e, ev := range m.edges {
			m.edgeSel[e] = verts[ev[0]] && verts[ev[1]]
		}
		return
	}
	copy(m.vertSel, verts)
}

func (m *Mesh) selectedFaceElements() (verts, edges []bool) {
	verts = make([]bool, m.numVerts)
	edges = make([]bool, len(m.edges))
	for f, sel := range m.faceSel {
		if !sel {
			continue
		}
		for _, v := range m.faces[f] {
			verts[v] = true
		}
		for _, e := range m.faceEdges[f] {
			edges[e] = true
		}
	}
	return verts, edges
}

func (m *Mesh) vertInterior(v int) bool {
	return !m.boundary[v] && allOf(m.vertFaces[v], m.faceSel)
}

func (m *Mesh) edgeInterior(e int) bool {
	return len(m.edgeFaces[e]) >= 2 && allOf(m.edgeFaces[e], m.faceSel)
}

func anyOf(ids []int, set []bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}

func allOf(ids []int, set []bool) bool {
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

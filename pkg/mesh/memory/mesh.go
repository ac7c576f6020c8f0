// Package memory provides an in-memory mesh that implements the editing
// interfaces consumed by the loop operations, including stand-ins for the
// host's native selection primitives.
package memory

import (
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/google/uuid"
)

// DefaultPickRadius is the maximum distance between a pointer and an edge
// for PickEdge to report a hit.
const DefaultPickRadius = 5.0

// Mesh is a polygon mesh held in slices. It is not safe for concurrent use.
type Mesh struct {
	id string

	numVerts  int
	edges     [][2]int
	edgeFaces [][]int
	vertEdges [][]int
	vertFaces [][]int
	faces     [][]int
	faceEdges [][]int
	boundary  []bool
	wire      []bool

	coords     [][2]float64
	pickRadius float64

	vertSel []bool
	edgeSel []bool
	faceSel []bool
	mode    mesh.SelectMode
	active  mesh.Element
}

// Option configures a Mesh at construction time.
type Option func(*Mesh)

// WithIdentity sets the identity reported by Identity. By default every
// mesh gets a random one.
func WithIdentity(id string) Option {
	return func(m *Mesh) {
		m.id = id
	}
}

// WithPickRadius sets the hit radius used by PickEdge.
func WithPickRadius(r float64) Option {
	return func(m *Mesh) {
		m.pickRadius = r
	}
}

// New builds a mesh from a document.
// Returns InvalidDocumentError if the document is inconsistent.
func New(doc *Document, opts ...Option) (*Mesh, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	m := &Mesh{
		id:         uuid.New().String(),
		numVerts:   doc.Verts,
		vertEdges:  make([][]int, doc.Verts),
		vertFaces:  make([][]int, doc.Verts),
		pickRadius: DefaultPickRadius,
		mode:       mesh.VertMode,
		active:     mesh.NoElement,
	}
	for _, opt := range opts {
		opt(m)
	}

	index := make(map[[2]int]int)
	addEdge := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if e, ok := index[key]; ok {
			return e
		}
		e := len(m.edges)
		index[key] = e
		m.edges = append(m.edges, [2]int{a, b})
		m.edgeFaces = append(m.edgeFaces, nil)
		m.vertEdges[a] = append(m.vertEdges[a], e)
		m.vertEdges[b] = append(m.vertEdges[b], e)
		return e
	}

	for f, verts := range doc.Faces {
		face := append([]int(nil), verts...)
		edges := make([]int, len(face))
		for i, v := range face {
			e := addEdge(v, face[(i+1)%len(face)])
			edges[i] = e
			m.edgeFaces[e] = append(m.edgeFaces[e], f)
			m.vertFaces[v] = append(m.vertFaces[v], f)
		}
		m.faces = append(m.faces, face)
		m.faceEdges = append(m.faceEdges, edges)
	}
	for _, w := range doc.Wires {
		addEdge(w[0], w[1])
	}

	m.boundary = make([]bool, m.numVerts)
	m.wire = make([]bool, m.numVerts)
	for v := 0; v < m.numVerts; v++ {
		if len(m.vertEdges[v]) == 0 {
			continue
		}
		wire := true
		for _, e := range m.vertEdges[v] {
			switch len(m.edgeFaces[e]) {
			case 0:
			case 1:
				m.boundary[v] = true
				wire = false
			default:
				wire = false
			}
		}
		m.wire[v] = wire
	}

	if len(doc.Coords) > 0 {
		m.coords = make([][2]float64, len(doc.Coords))
		for i, c := range doc.Coords {
			m.coords[i] = [2]float64{c[0], c[1]}
		}
	}

	m.vertSel = make([]bool, m.numVerts)
	m.edgeSel = make([]bool, len(m.edges))
	m.faceSel = make([]bool, len(m.faces))
	return m, nil
}

// MustNew is like New but panics on an invalid document.
func MustNew(doc *Document, opts ...Option) *Mesh {
	m, err := New(doc, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Graph

func (m *Mesh) NumVerts() int { return m.numVerts }
func (m *Mesh) NumEdges() int { return len(m.edges) }
func (m *Mesh) NumFaces() int { return len(m.faces) }

func (m *Mesh) VertEdges(v int) []int { return m.vertEdges[v] }
func (m *Mesh) IsBoundary(v int) bool { return m.boundary[v] }
func (m *Mesh) IsWire(v int) bool { return m.wire[v] }
func (m *Mesh) EdgeFaces(e int) []int { return m.edgeFaces[e] }
func (m *Mesh) FaceVerts(f int) []int { return m.faces[f] }
func (m *Mesh) FaceEdges(f int) []int { return m.faceEdges[f] }
func (m *Mesh) VertFaces(v int) []int { return m.vertFaces[v] }
func (m *Mesh) EdgeVerts(e int) (int, int) {
	return m.edges[e][0], m.edges[e][1]
}

func (m *Mesh) OtherVert(e, v int) int {
	if m.edges[e][0] == v {
		return m.edges[e][1]
	}
	return m.edges[e][0]
}

// Selection

func (m *Mesh) VertSelected(v int) bool { return m.vertSel[v] }
func (m *Mesh) SetVertSelected(v int, sel bool) { m.vertSel[v] = sel }
func (m *Mesh) EdgeSelected(e int) bool { return m.edgeSel[e] }
func (m *Mesh) SetEdgeSelected(e int, sel bool) { m.edgeSel[e] = sel }
func (m *Mesh) FaceSelected(f int) bool { return m.faceSel[f] }
func (m *Mesh) SetFaceSelected(f int, sel bool) { m.faceSel[f] = sel }

// Editing context

func (m *Mesh) SelectMode() mesh.SelectMode { return m.mode }
func (m *Mesh) SetSelectMode(mode mesh.SelectMode) { m.mode = mode }
func (m *Mesh) ActiveElement() mesh.Element { return m.active }
func (m *Mesh) Identity() string { return m.id }

// SetActiveElement makes el active, or clears the active element when el
// does not resolve to an element of this mesh.
func (m *Mesh) SetActiveElement(el mesh.Element) {
	if !mesh.ValidElement(m, el) {
		m.active = mesh.NoElement
		return
	}
	m.active = el
}

// FlushSelection derives the selection of the other element kinds from the
// kind that drives the current mode.
func (m *Mesh) FlushSelection() {
	switch m.mode.Primary() {
	case mesh.KindVert:
		m.flushFromVerts()
	case mesh.KindEdge:
		m.flushFromEdges()
	case mesh.KindFace:
		m.flushFromFaces()
	}
}

func (m *Mesh) flushFromVerts() {
	for e, ev := range m.edges {
		m.edgeSel[e] = m.vertSel[ev[0]] && m.vertSel[ev[1]]
	}
	for f, verts := range m.faces {
		all := true
		for _, v := range verts {
			if !m.vertSel[v] {
				all = false
				break
			}
		}
		m.faceSel[f] = all
	}
}

func (m *Mesh) flushFromEdges() {
	for v := range m.vertSel {
		m.vertSel[v] = false
	}
	for e, ev := range m.edges {
		if m.edgeSel[e] {
			m.vertSel[ev[0]] = true
			m.vertSel[ev[1]] = true
		}
	}
	for f, edges := range m.faceEdges {
		all := true
		for _, e := range edges {
			if !m.edgeSel[e] {
				all = false
				break
			}
		}
		m.faceSel[f] = all
	}
}

func (m *Mesh) flushFromFaces() {
	for v := range m.vertSel {
		m.vertSel[v] = false
	}
	for e := range m.edgeSel {
		m.edgeSel[e] = false
	}
	for f, sel := range m.faceSel {
		if !sel {
			continue
		}
		for _, v := range m.faces[f] {
			m.vertSel[v] = true
		}
		for _, e := range m.faceEdges[f] {
			m.edgeSel[e] = true
		}
	}
}

// Coord returns the 2D position of v, if the mesh has coordinates.
func (m *Mesh) Coord(v int) ([2]float64, bool) {
	if m.coords == nil {
		return [2]float64{}, false
	}
	return m.coords[v], true
}

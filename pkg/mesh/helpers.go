package mesh

// Count returns the number of elements of the given kind.
func Count(g Graph, kind Kind) int {
	switch kind {
	case KindVert:
		return g.NumVerts()
	case KindEdge:
		return g.NumEdges()
	case KindFace:
		return g.NumFaces()
	default:
		return 0
	}
}

// ValidElement reports whether el still resolves to an element of g.
func ValidElement(g Graph, el Element) bool {
	if el.Kind == KindNone {
		return false
	}
	return el.ID >= 0 && el.ID < Count(g, el.Kind)
}

// EdgesShareFace reports whether edges a and b are used by a common face.
func EdgesShareFace(g Graph, a, b int) bool {
	fa := g.EdgeFaces(a)
	if len(fa) == 0 {
		return false
	}
	for _, fb := range g.EdgeFaces(b) {
		for _, f := range fa {
			if f == fb {
				return true
			}
		}
	}
	return false
}

// EdgeBetween returns the edge joining vertices a and b.
func EdgeBetween(g Graph, a, b int) (int, bool) {
	for _, e := range g.VertEdges(a) {
		if g.OtherVert(e, a) == b {
			return e, true
		}
	}
	return -1, false
}

// SelectedVerts returns the selected vertex ids in ascending order.
func SelectedVerts(m Mesh) []int {
	var ids []int
	for v := 0; v < m.NumVerts(); v++ {
		if m.VertSelected(v) {
			ids = append(ids, v)
		}
	}
	return ids
}

// SelectedEdges returns the selected edge ids in ascending order.
func SelectedEdges(m Mesh) []int {
	var ids []int
	for e := 0; e < m.NumEdges(); e++ {
		if m.EdgeSelected(e) {
			ids = append(ids, e)
		}
	}
	return ids
}

// SelectedFaces returns the selected face ids in ascending order.
func SelectedFaces(m Mesh) []int {
	var ids []int
	for f := 0; f < m.NumFaces(); f++ {
		if m.FaceSelected(f) {
			ids = append(ids, f)
		}
	}
	return ids
}

// AnySelected reports whether any vertex is selected.
func AnySelected(m Mesh) bool {
	for v := 0; v < m.NumVerts(); v++ {
		if m.VertSelected(v) {
			return true
		}
	}
	return false
}

// DeselectAll clears every selection flag.
func DeselectAll(m Mesh) {
	for v := 0; v < m.NumVerts(); v++ {
		m.SetVertSelected(v, false)
	}
	for e := 0; e < m.NumEdges(); e++ {
		m.SetEdgeSelected(e, false)
	}
	for f := 0; f < m.NumFaces(); f++ {
		m.SetFaceSelected(f, false)
	}
}

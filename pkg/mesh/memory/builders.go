package memory

// GridSpacing is the distance between neighbouring vertices in the
// positions generated by the builders.
const GridSpacing = 10.0

// GridDocument describes an open grid of cols x rows vertices joined by
// quads. Vertex (c, r) has id r*cols+c.
func GridDocument(cols, rows int) *Document {
	doc := &Document{
		Name:  "grid",
		Verts: cols * rows,
	}
	for r := 0; r+1 < rows; r++ {
		for c := 0; c+1 < cols; c++ {
			a := r*cols + c
			doc.Faces = append(doc.Faces, []int{a, a + 1, a + 1 + cols, a + cols})
		}
	}
	doc.Coords = gridCoords(cols, rows)
	return doc
}

// TorusDocument describes a closed grid of cols x rows vertices whose rows
// and columns both wrap around. Both dimensions must be at least 3.
func TorusDocument(cols, rows int) *Document {
	doc := &Document{
		Name:  "torus",
		Verts: cols * rows,
	}
	id := func(c, r int) int {
		return (r%rows)*cols + c%cols
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			doc.Faces = append(doc.Faces, []int{id(c, r), id(c+1, r), id(c+1, r+1), id(c, r+1)})
		}
	}
	doc.Coords = gridCoords(cols, rows)
	return doc
}

// StripDocument describes a chain of n loose edges through n+1 vertices.
func StripDocument(n int) *Document {
	doc := &Document{
		Name:  "strip",
		Verts: n + 1,
	}
	for i := 0; i < n; i++ {
		doc.Wires = append(doc.Wires, []int{i, i + 1})
	}
	doc.Coords = gridCoords(n+1, 1)
	return doc
}

func gridCoords(cols, rows int) [][]float64 {
	coords := make([][]float64, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			coords = append(coords, []float64{float64(c) * GridSpacing, float64(r) * GridSpacing})
		}
	}
	return coords
}

// Grid builds an open grid of cols x rows vertices.
func Grid(cols, rows int, opts ...Option) *Mesh {
	return MustNew(GridDocument(cols, rows), opts...)
}

// Torus builds a closed grid of cols x rows vertices.
func Torus(cols, rows int, opts ...Option) *Mesh {
	return MustNew(TorusDocument(cols, rows), opts...)
}

// Strip builds a chain of n loose edges.
func Strip(n int, opts ...Option) *Mesh {
	return MustNew(StripDocument(n), opts...)
}

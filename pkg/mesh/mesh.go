// Package mesh defines the view the loop algorithms have of a polygon mesh.
//
// Vertices, edges and faces are identified by stable, zero-based integer
// indices. Only connectivity and selection flags are visible here; geometry
// belongs to the host that implements these interfaces.
package mesh

// Graph is a read-only view over mesh connectivity.
type Graph interface {
	NumVerts() int
	NumEdges() int
	NumFaces() int

	// VertEdges returns the edges incident to v, in a stable order.
	VertEdges(v int) []int
	// IsBoundary reports whether v lies on an edge used by exactly one face.
	IsBoundary(v int) bool
	// IsWire reports whether v has edges and none of them is used by a face.
	IsWire(v int) bool

	// EdgeVerts returns the two endpoints of e.
	EdgeVerts(e int) (int, int)
	// OtherVert returns the endpoint of e that is not v.
	OtherVert(e, v int) int
	// EdgeFaces returns the faces using e.
	EdgeFaces(e int) []int

	FaceVerts(f int) []int
	FaceEdges(f int) []int
}

// Selection gives read/write access to per-element selection flags.
// Writes are visible to subsequent reads immediately.
type Selection interface {
	VertSelected(v int) bool
	SetVertSelected(v int, selected bool)
	EdgeSelected(e int) bool
	SetEdgeSelected(e int, selected bool)
	FaceSelected(f int) bool
	SetFaceSelected(f int, selected bool)
}

// Mesh combines connectivity with selection state.
type Mesh interface {
	Graph
	Selection
}

// Editable is a mesh inside an editing context: it carries the selection
// mode, the active element and the host's selection propagation step.
type Editable interface {
	Mesh

	SelectMode() SelectMode
	SetSelectMode(mode SelectMode)

	// ActiveElement returns the active element, Kind None when there is none.
	ActiveElement() Element
	// SetActiveElement makes el active. Passing an Element of Kind None
	// clears it. Invalid references leave the active element unset.
	SetActiveElement(el Element)

	// FlushSelection propagates the selection of the element kind that
	// matches the current mode to the other kinds.
	FlushSelection()

	// Identity identifies the live mesh object. It changes when the host
	// swaps in a different mesh.
	Identity() string
}

// SelectMode is the vertex/edge/face selection granularity. More than one
// flag may be set at once.
type SelectMode struct {
	Vert bool `json:"vert"`
	Edge bool `json:"edge"`
	Face bool `json:"face"`
}

var (
	VertMode = SelectMode{Vert: true}
	EdgeMode = SelectMode{Edge: true}
	FaceMode = SelectMode{Face: true}
)

// Primary returns the element kind whose flags drive selection in this mode:
// vertices win over edges, edges over faces.
func (m SelectMode) Primary() Kind {
	switch {
	case m.Vert:
		return KindVert
	case m.Edge:
		return KindEdge
	case m.Face:
		return KindFace
	default:
		return KindNone
	}
}

// String returns a compact representation such as "vert+edge".
func (m SelectMode) String() string {
	s := ""
	add := func(name string) {
		if s != "" {
			s += "+"
		}
		s += name
	}
	if m.Vert {
		add("vert")
	}
	if m.Edge {
		add("edge")
	}
	if m.Face {
		add("face")
	}
	if s == "" {
		return "none"
	}
	return s
}

// Kind tags the type of a mesh element.
type Kind int

const (
	KindNone Kind = iota
	KindVert
	KindEdge
	KindFace
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindVert:
		return "vert"
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind name. Unknown names map to KindNone.
func ParseKind(s string) Kind {
	switch s {
	case "vert", "vertex":
		return KindVert
	case "edge":
		return KindEdge
	case "face":
		return KindFace
	default:
		return KindNone
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode as KindNone.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// Element references a single vertex, edge or face.
type Element struct {
	Kind Kind `json:"kind"`
	ID   int  `json:"id"`
}

// NoElement is the absent active element.
var NoElement = Element{Kind: KindNone, ID: -1}

// IsNone reports whether el references nothing.
func (el Element) IsNone() bool {
	return el.Kind == KindNone
}

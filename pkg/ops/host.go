package ops

// Native gives access to the host's own selection primitives.
type Native interface {
	// SelectMore grows the selection by one step across faces, or along
	// edges when faceStep is false.
	SelectMore(faceStep bool) error
	// SelectLess shrinks the selection by one step.
	SelectLess(faceStep bool) error
	// LoopToRegion turns a selected loop into the region it encloses.
	LoopToRegion() error
	// RegionToLoop turns a selected region into its boundary loop.
	RegionToLoop() error
	// LoopSelect runs the host's own loop selection at a pointer position.
	LoopSelect(x, y int, toggle bool) error
	DeselectAll()
}

// Picker finds the edge under a pointer position.
type Picker interface {
	PickEdge(x, y int) (edge int, ok bool)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(x, y int) (int, bool)

func (f PickerFunc) PickEdge(x, y int) (int, bool) {
	return f(x, y)
}

// FixedEdge is a Picker that always reports edge, for callers that already
// know which edge they mean.
func FixedEdge(edge int) Picker {
	return PickerFunc(func(int, int) (int, bool) {
		return edge, edge >= 0
	})
}

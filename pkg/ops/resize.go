package ops

import (
	"context"
	"fmt"
	"slices"

	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/selection"
)

// Direction is grow or shrink.
type Direction int

const (
	Grow Direction = iota
	Shrink
)

func (d Direction) String() string {
	if d == Shrink {
		return "shrink"
	}
	return "grow"
}

// ParseDirection parses "grow" or "shrink".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "grow", "":
		return Grow, nil
	case "shrink":
		return Shrink, nil
	default:
		return Grow, fmt.Errorf("unknown direction %q", s)
	}
}

// ResizeMode picks what a resize operates on.
type ResizeMode int

const (
	// Automatic works on faces in face select mode and on boundaries
	// otherwise. Shrinking an open or branching edge selection also works
	// on faces.
	Automatic ResizeMode = iota
	Boundaries
	Faces
	// NativeFace and NativeEdge hand the step to the host unchanged.
	NativeFace
	NativeEdge
)

var resizeModeNames = map[ResizeMode]string{
	Automatic:  "automatic",
	Boundaries: "boundaries",
	Faces:      "faces",
	NativeFace: "native_face",
	NativeEdge: "native_edge",
}

func (m ResizeMode) String() string {
	if name, ok := resizeModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseResizeMode parses a mode name. The empty string means Automatic.
func ParseResizeMode(s string) (ResizeMode, error) {
	if s == "" {
		return Automatic, nil
	}
	for m, name := range resizeModeNames {
		if name == s {
			return m, nil
		}
	}
	return Automatic, fmt.Errorf("unknown resize mode %q", s)
}

// ResizeSelection grows or shrinks the selection. In boundary mode a
// selected loop is treated as the edge of a region: the region is resized
// and its new boundary selected.
func ResizeSelection(ctx context.Context, ed mesh.Editable, native Native, dir Direction, mode ResizeMode) Outcome {
	ctx, span := opsTracer().Start(ctx, spanResize)
	defer span.End()

	var out Outcome
	if dir == Shrink {
		out = shrink(ed, native, mode)
	} else {
		out = grow(ed, native, mode)
	}
	return report(ctx, span, "resize_selection", out)
}

func grow(ed mesh.Editable, native Native, mode ResizeMode) Outcome {
	info := selection.Analyze(ed)

	var faceMode bool
	switch mode {
	case NativeFace:
		if err := native.SelectMore(true); err != nil {
			return hostError(err)
		}
		return finished("Grew face selection (native)")
	case NativeEdge:
		if err := native.SelectMore(false); err != nil {
			return hostError(err)
		}
		return finished("Grew edge selection (native)")
	case Automatic:
		faceMode = ed.SelectMode().Face
	default:
		faceMode = mode == Faces
	}

	if len(info.AllSelectedVerts) == 0 {
		return finishedWarning("No vertices selected")
	}
	saved := selection.Capture(ed)

	if faceMode {
		if err := native.SelectMore(true); err != nil {
			saved.Restore(ed)
			return hostError(err)
		}
		return finished("Grew face selection")
	}

	err := runSteps(
		func() error {
			if info.HasBranches() || info.HasEndpoints() {
				return nil
			}
			return native.LoopToRegion()
		},
		func() error { return native.SelectMore(true) },
		native.RegionToLoop,
	)
	if err != nil {
		saved.Restore(ed)
		return hostError(err)
	}

	if slices.Equal(mesh.SelectedEdges(ed), saved.Edges) {
		return finishedWarning("Can't grow boundary selection")
	}
	return finished("Grew boundary selection")
}

func shrink(ed mesh.Editable, native Native, mode ResizeMode) Outcome {
	info := selection.Analyze(ed)

	var faceMode bool
	switch mode {
	case NativeFace:
		if err := native.SelectLess(true); err != nil {
			return hostError(err)
		}
		return finished("Shrank face selection (native)")
	case NativeEdge:
		if err := native.SelectLess(false); err != nil {
			return hostError(err)
		}
		return finished("Shrank edge selection (native)")
	case Automatic:
		faceMode = ed.SelectMode().Face || info.HasBranches() || info.HasEndpoints()
	default:
		faceMode = mode == Faces
	}

	if len(info.AllSelectedVerts) == 0 {
		return finishedWarning("No vertices selected")
	}
	saved := selection.Capture(ed)

	var err error
	if faceMode {
		err = native.SelectLess(true)
	} else {
		if info.HasBranches() || info.HasEndpoints() {
			return finishedWarning("Can't shrink boundary selection")
		}
		err = runSteps(
			native.LoopToRegion,
			func() error { return native.SelectLess(true) },
			native.RegionToLoop,
		)
	}
	if err != nil {
		saved.Restore(ed)
		return hostError(err)
	}

	if !mesh.AnySelected(ed) {
		saved.Restore(ed)
		return finishedWarning("Can't shrink selection (no vertices would remain)")
	}
	if faceMode {
		return finished("Shrank face selection")
	}
	return finished("Shrank boundary selection")
}

func runSteps(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

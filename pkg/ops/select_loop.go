package ops

import (
	"context"
	"fmt"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/selection"
)

// SelectLoopMode picks between the loop cycling and the host's own loop
// selection.
type SelectLoopMode int

const (
	Smart SelectLoopMode = iota
	NativeLoop
)

func (m SelectLoopMode) String() string {
	if m == NativeLoop {
		return "native"
	}
	return "smart"
}

// ParseSelectLoopMode parses "smart" or "native".
func ParseSelectLoopMode(s string) (SelectLoopMode, error) {
	switch s {
	case "smart", "":
		return Smart, nil
	case "native":
		return NativeLoop, nil
	default:
		return Smart, fmt.Errorf("unknown select loop mode %q", s)
	}
}

// SelectLoopRequest is one click on an edge.
type SelectLoopRequest struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Extend bool           `json:"extend"`
	Mode   SelectLoopMode `json:"-"`
}

// Session remembers the loop selected by the previous SelectLoop call so
// that repeated calls on the same edge cycle through its loops. A Session
// is not safe for concurrent use.
type Session struct {
	opts loop.SearchOptions

	meshID  string
	current loop.EdgeSet
	hasLoop bool
	saved   *selection.State
}

// NewSession returns an empty session.
func NewSession(opts loop.SearchOptions) *Session {
	return &Session{opts: opts}
}

// SetSearchOptions changes the options used for later calls.
func (s *Session) SetSearchOptions(opts loop.SearchOptions) {
	s.opts = opts
}

// Reset forgets the current loop and saved selection.
func (s *Session) Reset() {
	s.meshID = ""
	s.current = nil
	s.hasLoop = false
	s.saved = nil
}

// Current returns the loop selected by the last call, if any.
func (s *Session) Current() (loop.EdgeSet, bool) {
	return s.current, s.hasLoop
}

// stale reports whether the remembered loop no longer describes ed: another
// mesh, or the loop has been (partly) deselected since.
func (s *Session) stale(ed mesh.Editable) bool {
	if s.meshID != ed.Identity() {
		return true
	}
	for _, e := range s.current {
		if e >= ed.NumEdges() || !ed.EdgeSelected(e) {
			return true
		}
	}
	return false
}

// SelectLoop selects the loop under the pointer. Calling it again on the
// same edge moves on to the next closed loop through that edge, wrapping
// around. With Extend the loop is added to the previous selection, and the
// cycle includes a step that removes it again.
func (s *Session) SelectLoop(ctx context.Context, ed mesh.Editable, native Native, picker Picker, req SelectLoopRequest) Outcome {
	ctx, span := opsTracer().Start(ctx, spanSelect)
	defer span.End()

	return report(ctx, span, "select_loop", s.selectLoop(ed, native, picker, req))
}

func (s *Session) selectLoop(ed mesh.Editable, native Native, picker Picker, req SelectLoopRequest) Outcome {
	if req.Mode == NativeLoop || ed.SelectMode().Face {
		if err := native.LoopSelect(req.X, req.Y, req.Extend); err != nil {
			return hostError(err)
		}
		return finished("Selected loop (native)")
	}

	edge, ok := picker.PickEdge(req.X, req.Y)
	if !ok || edge < 0 || edge >= ed.NumEdges() {
		return cancelled("No edge selected under mouse")
	}
	loops := loop.EdgeLoops(ed, edge, s.opts)

	if s.stale(ed) {
		s.Reset()
		s.meshID = ed.Identity()
	}

	var next loop.EdgeSet
	idx := -1
	if s.hasLoop {
		idx = indexOfSet(loops, s.current)
	}
	if idx < 0 {
		next = loops[0]
		switch {
		case !req.Extend:
			s.saved = nil
		case allEdgesSelected(ed, loops[0]):
			// Extending onto a loop that is already selected removes it.
			selectEdges(ed, loops[0], false)
			st := selection.Capture(ed)
			s.saved = &st
			selectEdges(ed, loops[0], true)
			next = loop.EdgeSet{}
		default:
			st := selection.Capture(ed)
			s.saved = &st
		}
	} else {
		if req.Extend {
			loops = append(loops, loop.EdgeSet{})
		} else {
			s.saved = nil
		}
		next = loops[(idx+1)%len(loops)]
	}
	s.current = next
	s.hasLoop = true

	if s.saved != nil {
		s.saved.Restore(ed)
	} else {
		mesh.DeselectAll(ed)
	}
	selectEdges(ed, next, true)
	ed.FlushSelection()

	if next.Len() == 0 {
		return finished("Deselected loop")
	}
	total := 0
	for _, l := range loops {
		if l.Len() > 0 {
			total++
		}
	}
	return finished("Selected loop %d of %d (%d edges)", indexOfSet(loops, next)+1, total, next.Len())
}

// selectEdges sets edges and their endpoints.
func selectEdges(ed mesh.Editable, edges loop.EdgeSet, sel bool) {
	for _, e := range edges {
		a, b := ed.EdgeVerts(e)
		ed.SetEdgeSelected(e, sel)
		ed.SetVertSelected(a, sel)
		ed.SetVertSelected(b, sel)
	}
}

func allEdgesSelected(ed mesh.Editable, edges loop.EdgeSet) bool {
	for _, e := range edges {
		if !ed.EdgeSelected(e) {
			return false
		}
	}
	return true
}

func indexOfSet(sets []loop.EdgeSet, s loop.EdgeSet) int {
	for i, other := range sets {
		if other.Equal(s) {
			return i
		}
	}
	return -1
}

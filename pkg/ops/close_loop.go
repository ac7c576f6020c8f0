package ops

import (
	"context"

	"github.com/edgy/edgy/pkg/loop"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/edgy/edgy/pkg/path"
	"github.com/edgy/edgy/pkg/selection"
)

// CloseLoop closes every selected open loop along the shortest clean path
// between its two ends. Islands without exactly two ends are left alone.
// If any island cannot be closed the selection is put back as it was.
func CloseLoop(ctx context.Context, ed mesh.Editable) Outcome {
	ctx, span := opsTracer().Start(ctx, spanCloseLoop)
	defer span.End()

	return report(ctx, span, "close_loop", closeLoop(ed))
}

func closeLoop(ed mesh.Editable) Outcome {
	info := selection.Analyze(ed)
	if len(info.Islands) == 0 {
		return cancelled("No edges selected")
	}
	if !info.HasEndpoints() || info.HasBranches() {
		return cancelled("Cannot close loop: not an open loop")
	}

	saved := selection.Capture(ed)
	closed := 0
	for _, island := range info.Islands {
		ends := selection.EndpointsOf(ed, info, island)
		if len(ends) != 2 {
			continue
		}
		verts, ok := path.FindShortestPath(ed, ends[0], ends[1], loop.NewEdgeSet(island...))
		if !ok {
			saved.Restore(ed)
			return cancelled("Could not find clean closures")
		}

		if ed.SelectMode().Vert {
			for _, v := range verts {
				ed.SetVertSelected(v, true)
			}
		} else {
			for i := 1; i < len(verts); i++ {
				if e, ok := mesh.EdgeBetween(ed, verts[i-1], verts[i]); ok {
					ed.SetEdgeSelected(e, true)
				}
			}
		}
		ed.FlushSelection()
		closed++
	}
	return finished("Closed %d loop(s)", closed)
}

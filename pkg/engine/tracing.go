package engine

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const engineTracerName = "edgy.engine"

const (
	spanCreateMesh       = "engine.create_mesh"
	spanLoadMesh         = "engine.load_mesh"
	spanPureLoops        = "engine.pure_loops"
	spanEdgeLoops        = "engine.edge_loops"
	spanShortestPath     = "engine.shortest_path"
	spanSetSelection     = "engine.set_selection"
	spanRunOperation     = "engine.operation"
	spanSaveSelection    = "engine.save_selection"
	spanRestoreSelection = "engine.restore_selection"
)

func engineTracer() trace.Tracer {
	return otel.Tracer(engineTracerName)
}

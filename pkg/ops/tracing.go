package ops

import (
	"context"

	"github.com/edgy/edgy/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const opsTracerName = "edgy.ops"

const (
	spanCloseLoop = "ops.close_loop"
	spanResize    = "ops.resize_selection"
	spanSelect    = "ops.select_loop"
)

func opsTracer() trace.Tracer {
	return otel.Tracer(opsTracerName)
}

// report annotates the span with the outcome and logs it.
func report(ctx context.Context, span trace.Span, op string, out Outcome) Outcome {
	span.SetAttributes(
		attribute.String("edgy.operation", op),
		attribute.String("edgy.status", out.Status.String()),
		attribute.String("edgy.level", out.Level.String()),
	)

	log := logger.FromContext(ctx)
	args := []any{"operation", op, "status", out.Status.String()}
	if out.Level == Warning {
		log.WarnContext(ctx, out.Message, args...)
	} else {
		log.InfoContext(ctx, out.Message, args...)
	}
	return out
}

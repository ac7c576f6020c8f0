package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestTraceExemplarLabels_WithSpan(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{9, 8, 7, 6, 5, 4, 3, 2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	labels, ok := traceExemplarLabels(ctx)
	if !ok {
		t.Fatal("expected exemplar labels from valid span context")
	}
	if labels["trace_id"] != spanCtx.TraceID().String() {
		t.Fatalf("expected trace_id %s, got %s", spanCtx.TraceID().String(), labels["trace_id"])
	}
	if labels["span_id"] != spanCtx.SpanID().String() {
		t.Fatalf("expected span_id %s, got %s", spanCtx.SpanID().String(), labels["span_id"])
	}
}

func TestTraceExemplarLabels_WithoutSpan(t *testing.T) {
	labels, ok := traceExemplarLabels(context.Background())
	if ok {
		t.Fatalf("expected no exemplar labels without span, got %v", labels)
	}
}

func TestRecordHTTPRequestContext_Exemplar(t *testing.T) {
	m := NewManager(DefaultConfig())

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0xaa, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		SpanID:     trace.SpanID{1, 1, 1, 1, 1, 1, 1, 1},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	m.RecordHTTPRequestContext(ctx, "GET", "/api/v1/meshes", "200", 3*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "edgy_http_requests_total") {
		t.Fatal("expected edgy_http_requests_total in output")
	}
	if !strings.Contains(body, spanCtx.TraceID().String()) {
		t.Errorf("expected exemplar with trace id %s", spanCtx.TraceID())
	}
}

package apm

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceIDFromContext(t *testing.T) {
	if id := TraceIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty trace id without span, got %q", id)
	}

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "probe")
	defer span.End()

	id := TraceIDFromContext(ctx)
	if id == "" || id != span.SpanContext().TraceID().String() {
		t.Errorf("expected span trace id, got %q", id)
	}
}

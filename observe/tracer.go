package observe

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NoopTracer returns a tracer that records nothing. Components wired without
// telemetry, such as in tests, use it instead of a nil check at every span.
func NoopTracer() trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer("noop")
}

// EndSpan ends span, recording err as the span's status when present.
// Best-effort: it never panics on an already-ended span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

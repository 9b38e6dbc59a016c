// Package observe wires logging, metrics, and tracing for the content
// backend: a zap logger, an OpenTelemetry meter exported through Prometheus
// (with an optional OTLP or stdout push exporter), and an OpenTelemetry
// tracer with configurable span export.
package observe

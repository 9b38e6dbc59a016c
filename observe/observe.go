package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds telemetry configuration.
type Config struct {
	ServiceName string
	Version     string
	LogLevel    string // debug|info|warn|error

	// TraceExporter selects where spans go: stdout, otlp, or none.
	// Empty means none; spans are still created but discarded.
	TraceExporter string

	// MetricExporter selects an optional push exporter (stdout, otlp, none)
	// that runs alongside the always-on Prometheus scrape endpoint.
	MetricExporter string
}

// Telemetry bundles the logger, meter, and tracer handed to the rest of the
// service.
type Telemetry struct {
	Logger *zap.Logger
	Meter  metric.Meter
	Tracer trace.Tracer

	registry       *prometheus.Registry
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// New builds the telemetry stack. Metrics are registered on a private
// Prometheus registry served by MetricsHandler; spans go to the configured
// trace exporter.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("observe: service name is required")
	}

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: create resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("observe: create prometheus exporter: %w", err)
	}

	meterOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	}
	pushReader, err := newPushMetricReader(ctx, cfg.MetricExporter)
	if err != nil {
		return nil, err
	}
	if pushReader != nil {
		meterOpts = append(meterOpts, sdkmetric.WithReader(pushReader))
	}
	meterProvider := sdkmetric.NewMeterProvider(meterOpts...)

	spanExporter, err := newTraceExporter(ctx, cfg.TraceExporter)
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter),
	)

	return &Telemetry{
		Logger:         logger,
		Meter:          meterProvider.Meter(cfg.ServiceName),
		Tracer:         tracerProvider.Tracer(cfg.ServiceName),
		registry:       registry,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
	}, nil
}

// MetricsHandler serves the Prometheus scrape endpoint.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes the tracer and meter providers and the logger.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	_ = t.Logger.Sync()

	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: tracer shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observe: meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

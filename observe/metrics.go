package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetrics records cache behavior: lookup outcomes, sweep evictions,
// and shared cache failures.
type CacheMetrics struct {
	lookups      metric.Int64Counter
	evictions    metric.Int64Counter
	sharedErrors metric.Int64Counter
}

// NewCacheMetrics registers the cache instruments on the meter.
func NewCacheMetrics(meter metric.Meter) (*CacheMetrics, error) {
	lookups, err := meter.Int64Counter(
		"cache.lookups.total",
		metric.WithDescription("Cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.sweep.evictions.total",
		metric.WithDescription("Entries removed by the background sweep"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	sharedErrors, err := meter.Int64Counter(
		"cache.shared.errors.total",
		metric.WithDescription("Shared cache operations that failed and degraded to a miss"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		lookups:      lookups,
		evictions:    evictions,
		sharedErrors: sharedErrors,
	}, nil
}

// RecordLookup records one lookup with outcome "hit" or "miss".
func (m *CacheMetrics) RecordLookup(ctx context.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", outcome)))
}

// RecordEvictions records entries removed by a sweep pass.
func (m *CacheMetrics) RecordEvictions(ctx context.Context, n int) {
	m.evictions.Add(ctx, int64(n))
}

// RecordSharedError records one failed shared cache operation.
func (m *CacheMetrics) RecordSharedError(ctx context.Context) {
	m.sharedErrors.Add(ctx, 1)
}

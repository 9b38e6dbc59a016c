package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// OrchestratorConfig configures the cache-aside orchestrator.
type OrchestratorConfig struct {
	// SingleFlight collapses concurrent misses for the same key into a
	// single fetch; all callers receive that fetch's result. When false,
	// concurrent misses each invoke their fetch and the last write wins.
	SingleFlight bool
}

// Orchestrator implements the cache-aside pattern over a Store: check the
// cache, and on miss run the caller-supplied fetch, store its result, and
// return it. Fetch errors propagate unmodified and are never cached.
type Orchestrator struct {
	store *Store
	cfg   OrchestratorConfig
	sf    singleflight.Group
}

// NewOrchestrator creates an orchestrator backed by store.
func NewOrchestrator(store *Store, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{store: store, cfg: cfg}
}

// Store returns the backing store, for management operations.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Do returns the cached value for key, or fetches, stores, and returns it.
// Hit/miss accounting happens in the store's Get.
func (o *Orchestrator) Do(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	if o == nil || o.store == nil {
		return nil, ErrNilStore
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	if v, ok := o.store.Get(key); ok {
		return v, nil
	}

	if o.cfg.SingleFlight {
		v, err, _ := o.sf.Do(key, func() (any, error) {
			return o.fetchAndStore(ctx, key, ttl, fetch)
		})
		return v, err
	}
	return o.fetchAndStore(ctx, key, ttl, fetch)
}

func (o *Orchestrator) fetchAndStore(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	o.store.Set(key, v, ttl)
	return v, nil
}

// WithCache is the typed cache-aside entry point. It returns the cached T
// for key, or invokes fetch, stores the result under key with ttl, and
// returns it. A cached value of a different concrete type is an error.
func WithCache[T any](ctx context.Context, o *Orchestrator, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := o.Do(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: value for %q is %T, want %T", key, v, zero)
	}
	return typed, nil
}

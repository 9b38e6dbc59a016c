package shared

import (
	"context"
	"errors"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// fakeRedis implements Commands in-memory, with an optional forced error to
// simulate an unreachable service.
type fakeRedis struct {
	data  map[string]string
	err   error
	calls int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.calls++
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetEx(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.calls++
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.calls++
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Keys(_ context.Context, pattern string) *redis.StringSliceCmd {
	f.calls++
	if f.err != nil {
		return redis.NewStringSliceResult(nil, f.err)
	}
	var matches []string
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			matches = append(matches, k)
		}
	}
	return redis.NewStringSliceResult(matches, nil)
}

func (f *fakeRedis) Ping(_ context.Context) *redis.StatusCmd {
	f.calls++
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	return redis.NewStatusResult("PONG", nil)
}

var _ Commands = (*fakeRedis)(nil)

func TestClient_GetSetDel(t *testing.T) {
	rdb := newFakeRedis()
	c := NewClient(rdb, Config{}, zap.NewNop())
	ctx := context.Background()

	// Miss before any write
	if _, outcome := c.TryGet(ctx, "industries:all"); outcome != OutcomeMiss {
		t.Errorf("TryGet on empty cache = %v, want miss", outcome)
	}

	if outcome := c.TrySet(ctx, "industries:all", `[{"id":1}]`, time.Hour); outcome != OutcomeOK {
		t.Errorf("TrySet = %v, want ok", outcome)
	}

	val, outcome := c.TryGet(ctx, "industries:all")
	if outcome != OutcomeHit {
		t.Fatalf("TryGet after TrySet = %v, want hit", outcome)
	}
	if val != `[{"id":1}]` {
		t.Errorf("TryGet returned %q, want stored payload", val)
	}

	if outcome := c.TryDel(ctx, "industries:all"); outcome != OutcomeOK {
		t.Errorf("TryDel = %v, want ok", outcome)
	}
	if _, outcome := c.TryGet(ctx, "industries:all"); outcome != OutcomeMiss {
		t.Errorf("TryGet after TryDel = %v, want miss", outcome)
	}
}

func TestClient_Prefix(t *testing.T) {
	rdb := newFakeRedis()
	c := NewClient(rdb, Config{Prefix: "jargon"}, zap.NewNop())
	ctx := context.Background()

	c.TrySet(ctx, "level:levelId=3", "v", time.Hour)

	if _, ok := rdb.data["jargon:level:levelId=3"]; !ok {
		t.Fatalf("stored keys = %v, want namespaced key", rdb.data)
	}

	keys, outcome := c.TryKeys(ctx, "level:*")
	if outcome != OutcomeOK {
		t.Fatalf("TryKeys = %v, want ok", outcome)
	}
	if len(keys) != 1 || keys[0] != "level:levelId=3" {
		t.Errorf("TryKeys = %v, want prefix stripped", keys)
	}
}

func TestClient_FailuresDegradeToSkipped(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("dial tcp: connection refused")
	c := NewClient(rdb, Config{}, zap.NewNop())
	ctx := context.Background()

	var errCount int
	c.OnError(func() { errCount++ })

	if _, outcome := c.TryGet(ctx, "k"); outcome != OutcomeSkipped {
		t.Errorf("TryGet with dead service = %v, want skipped", outcome)
	}
	if outcome := c.TrySet(ctx, "k", "v", time.Hour); outcome != OutcomeSkipped {
		t.Errorf("TrySet with dead service = %v, want skipped", outcome)
	}
	if outcome := c.TryDel(ctx, "k"); outcome != OutcomeSkipped {
		t.Errorf("TryDel with dead service = %v, want skipped", outcome)
	}
	if _, outcome := c.TryKeys(ctx, "*"); outcome != OutcomeSkipped {
		t.Errorf("TryKeys with dead service = %v, want skipped", outcome)
	}
	if errCount != 4 {
		t.Errorf("OnError fired %d times, want 4", errCount)
	}
}

func TestClient_BreakerStopsCalls(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	c := NewClient(rdb, Config{
		BreakerMaxFailures: 2,
		BreakerResetAfter:  time.Hour,
	}, zap.NewNop())
	ctx := context.Background()

	c.TryGet(ctx, "k")
	c.TryGet(ctx, "k")
	if rdb.calls != 2 {
		t.Fatalf("underlying calls = %d, want 2", rdb.calls)
	}

	// Circuit is open: further operations skip the transport entirely.
	if _, outcome := c.TryGet(ctx, "k"); outcome != OutcomeSkipped {
		t.Errorf("TryGet with open breaker = %v, want skipped", outcome)
	}
	if rdb.calls != 2 {
		t.Errorf("underlying calls after breaker opened = %d, want 2", rdb.calls)
	}
}

func TestClient_SetWithoutTTLSkipped(t *testing.T) {
	rdb := newFakeRedis()
	c := NewClient(rdb, Config{}, zap.NewNop())

	if outcome := c.TrySet(context.Background(), "k", "v", 0); outcome != OutcomeSkipped {
		t.Errorf("TrySet with ttl=0 = %v, want skipped", outcome)
	}
	if rdb.calls != 0 {
		t.Errorf("TrySet with ttl=0 reached the transport")
	}
}

func TestClient_DelNoKeys(t *testing.T) {
	rdb := newFakeRedis()
	c := NewClient(rdb, Config{}, zap.NewNop())

	if outcome := c.TryDel(context.Background()); outcome != OutcomeOK {
		t.Errorf("TryDel with no keys = %v, want ok", outcome)
	}
	if rdb.calls != 0 {
		t.Errorf("TryDel with no keys reached the transport")
	}
}

func TestClient_OperationSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	c := NewClient(newFakeRedis(), Config{Prefix: "jargon", Tracer: tp.Tracer("test")}, zap.NewNop())

	if _, outcome := c.TryGet(context.Background(), "industries:all"); outcome != OutcomeMiss {
		t.Fatalf("TryGet outcome = %v, want miss", outcome)
	}
	if outcome := c.TrySet(context.Background(), "industries:all", "[]", time.Minute); outcome != OutcomeOK {
		t.Fatalf("TrySet outcome = %v, want ok", outcome)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	wantName := []string{"shared.cache.get", "shared.cache.setex"}
	wantOutcome := []string{"miss", "ok"}
	for i, span := range spans {
		if span.Name() != wantName[i] {
			t.Errorf("span %d name = %q, want %q", i, span.Name(), wantName[i])
		}
		attrs := make(map[string]attribute.Value)
		for _, a := range span.Attributes() {
			attrs[string(a.Key)] = a.Value
		}
		if v, ok := attrs["cache.key"]; !ok || v.AsString() != "industries:all" {
			t.Errorf("span %d cache.key = %v, want industries:all", i, v)
		}
		if v, ok := attrs["cache.outcome"]; !ok || v.AsString() != wantOutcome[i] {
			t.Errorf("span %d cache.outcome = %v, want %q", i, v, wantOutcome[i])
		}
	}
}

func TestClient_OpenBreakerSkipsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	c := NewClient(fake, Config{
		BreakerMaxFailures: 1,
		BreakerResetAfter:  time.Hour,
		Tracer:             tp.Tracer("test"),
	}, zap.NewNop())

	// First call reaches the transport and trips the breaker.
	if _, outcome := c.TryGet(context.Background(), "k"); outcome != OutcomeSkipped {
		t.Fatalf("first TryGet outcome = %v, want skipped", outcome)
	}
	// Second call is short-circuited before the transport: no span.
	if _, outcome := c.TryGet(context.Background(), "k"); outcome != OutcomeSkipped {
		t.Fatalf("second TryGet outcome = %v, want skipped", outcome)
	}

	if got := len(recorder.Ended()); got != 1 {
		t.Errorf("got %d spans, want 1 (open breaker never reaches the transport)", got)
	}
}

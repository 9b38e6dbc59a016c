package shared

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Outcome reports how a shared cache operation resolved. "Cache absent" is a
// first-class branch here, never an error.
type Outcome int

const (
	// OutcomeHit means the key was found.
	OutcomeHit Outcome = iota
	// OutcomeMiss means the service answered and the key was not present.
	OutcomeMiss
	// OutcomeOK means a write or delete was acknowledged.
	OutcomeOK
	// OutcomeSkipped means the operation did not reach the service
	// (transport failure or open breaker); callers treat it as a miss.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Commands is the subset of the Redis API the client uses. Satisfied by
// redis.UniversalClient; narrowed so tests can substitute a fake.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Config configures the shared cache client.
type Config struct {
	// Prefix namespaces keys on a Redis instance shared with other apps.
	Prefix string

	// OpTimeout bounds each Redis operation. Default: 2 seconds.
	OpTimeout time.Duration

	// BreakerMaxFailures is the consecutive failure count that opens the
	// circuit. Default: 5.
	BreakerMaxFailures int

	// BreakerResetAfter is how long the circuit stays open before a probe.
	// Default: 30 seconds.
	BreakerResetAfter time.Duration

	// Tracer records a client span per operation that reaches the service.
	// Nil means spans are discarded.
	Tracer trace.Tracer
}

// Client wraps the shared Redis cache. All methods are best-effort and
// never return transport errors.
type Client struct {
	rdb     Commands
	cfg     Config
	log     *zap.Logger
	tracer  trace.Tracer
	breaker *breaker
	onError func()
}

// NewClient creates a shared cache client. rdb is typically a *redis.Client
// from redis.NewClient.
func NewClient(rdb Commands, cfg Config, log *zap.Logger) *Client {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &Client{
		rdb:     rdb,
		cfg:     cfg,
		log:     log,
		tracer:  tracer,
		breaker: newBreaker(cfg.BreakerMaxFailures, cfg.BreakerResetAfter),
	}
}

// OnError registers a callback invoked once per failed operation. Used to
// wire the shared-cache error metric.
func (c *Client) OnError(fn func()) {
	c.onError = fn
}

// TryGet fetches a serialized value. OutcomeSkipped is indistinguishable
// from a miss to callers; both mean "go to the primary store".
func (c *Client) TryGet(ctx context.Context, key string) (val string, outcome Outcome) {
	if !c.breaker.allow() {
		return "", OutcomeSkipped
	}
	ctx, span := c.startSpan(ctx, "get", key)
	defer func() { endSpan(span, outcome) }()
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	v, err := c.rdb.Get(ctx, c.namespaced(key)).Result()
	switch {
	case err == nil:
		c.breaker.record(nil)
		return v, OutcomeHit
	case errors.Is(err, redis.Nil):
		c.breaker.record(nil)
		return "", OutcomeMiss
	default:
		c.fail("GET", key, err)
		return "", OutcomeSkipped
	}
}

// TrySet stores a serialized value with an expiry (SETEX). A ttl <= 0 skips
// the write: the shared tier never holds immortal entries.
func (c *Client) TrySet(ctx context.Context, key string, value string, ttl time.Duration) (outcome Outcome) {
	if ttl <= 0 {
		return OutcomeSkipped
	}
	if !c.breaker.allow() {
		return OutcomeSkipped
	}
	ctx, span := c.startSpan(ctx, "setex", key)
	defer func() { endSpan(span, outcome) }()
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	if err := c.rdb.SetEx(ctx, c.namespaced(key), value, ttl).Err(); err != nil {
		c.fail("SETEX", key, err)
		return OutcomeSkipped
	}
	c.breaker.record(nil)
	return OutcomeOK
}

// TryDel removes one or more keys. Idempotent; missing keys are not an
// error.
func (c *Client) TryDel(ctx context.Context, keys ...string) (outcome Outcome) {
	if len(keys) == 0 {
		return OutcomeOK
	}
	if !c.breaker.allow() {
		return OutcomeSkipped
	}
	ctx, span := c.startSpan(ctx, "del", strings.Join(keys, ","))
	defer func() { endSpan(span, outcome) }()
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = c.namespaced(k)
	}
	if err := c.rdb.Del(ctx, namespaced...).Err(); err != nil {
		c.fail("DEL", strings.Join(keys, ","), err)
		return OutcomeSkipped
	}
	c.breaker.record(nil)
	return OutcomeOK
}

// TryKeys lists keys matching pattern, with the client prefix stripped.
func (c *Client) TryKeys(ctx context.Context, pattern string) (keys []string, outcome Outcome) {
	if !c.breaker.allow() {
		return nil, OutcomeSkipped
	}
	ctx, span := c.startSpan(ctx, "keys", pattern)
	defer func() { endSpan(span, outcome) }()
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	matches, err := c.rdb.Keys(ctx, c.namespaced(pattern)).Result()
	if err != nil {
		c.fail("KEYS", pattern, err)
		return nil, OutcomeSkipped
	}
	c.breaker.record(nil)

	if c.cfg.Prefix == "" {
		return matches, OutcomeOK
	}
	trimmed := make([]string, len(matches))
	for i, m := range matches {
		trimmed[i] = strings.TrimPrefix(m, c.cfg.Prefix+":")
	}
	return trimmed, OutcomeOK
}

// Ping checks connectivity, for health checks. This is the one method that
// reports the underlying error; health treats it as degraded, not fatal.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) namespaced(key string) string {
	if c.cfg.Prefix == "" {
		return key
	}
	return c.cfg.Prefix + ":" + key
}

func (c *Client) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.OpTimeout)
}

func (c *Client) startSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "shared.cache."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
}

func endSpan(span trace.Span, outcome Outcome) {
	span.SetAttributes(attribute.String("cache.outcome", outcome.String()))
	span.End()
}

func (c *Client) fail(op, key string, err error) {
	c.breaker.record(err)
	if c.onError != nil {
		c.onError()
	}
	c.log.Warn("shared cache unavailable, continuing without it",
		zap.String("op", op),
		zap.String("key", key),
		zap.String("breaker", c.breaker.currentState().String()),
		zap.Error(err),
	)
}

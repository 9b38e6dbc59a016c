package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jargon-IDSP/backend-sub001/cache"
	"github.com/Jargon-IDSP/backend-sub001/observe"
)

// envelope is the uniform response shape.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) respondData(w http.ResponseWriter, v any) {
	s.respondJSON(w, http.StatusOK, envelope{Success: true, Data: v})
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, envelope{Success: false, Error: msg})
}

// handleWithCache runs a fetch through the cache-aside orchestrator and
// writes the result. Fetch errors become the handler's 500; the cache layer
// never retries or rewrites them.
func handleWithCache[T any](s *Server, w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fetch func(context.Context) (T, error)) {
	ctx, span := s.tracer.Start(r.Context(), "cache.lookup",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("cache.key", key)),
	)

	fetched := false
	v, err := cache.WithCache(ctx, s.orch, key, ttl, func(ctx context.Context) (T, error) {
		fetched = true
		return fetch(ctx)
	})

	span.SetAttributes(attribute.Bool("cache.hit", !fetched))
	observe.EndSpan(span, err)

	if s.metrics != nil {
		s.metrics.RecordLookup(r.Context(), !fetched)
	}
	if err != nil {
		s.log.Error("fetch failed", zap.String("key", key), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondData(w, v)
}

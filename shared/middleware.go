package shared

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// cachedResponse is the envelope stored in the shared cache by the
// read-through middleware. Body holds the handler's JSON output verbatim.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Middleware applies the read-through pattern to a downstream handler: a
// request key is derived from method and path, a shared-cache hit is served
// verbatim, and on miss the handler's response is cached with ttl - but
// only when the handler answered 200. Non-success responses are never
// cached.
//
// A malformed cached envelope fails the request rather than silently
// falling through to the handler.
func Middleware(client *Client, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestKey(r)

			if raw, outcome := client.TryGet(r.Context(), key); outcome == OutcomeHit {
				var cached cachedResponse
				if err := json.Unmarshal([]byte(raw), &cached); err != nil {
					log.Error("malformed shared cache entry",
						zap.String("key", key), zap.Error(err))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"success":false,"error":"corrupt cache entry"}`))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}

			rec := newRecorder(w)
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			payload, err := json.Marshal(cachedResponse{
				Status: rec.status,
				Body:   json.RawMessage(rec.body.Bytes()),
			})
			if err != nil {
				// Handler produced a non-JSON body; nothing to cache.
				return
			}
			client.TrySet(r.Context(), key, string(payload), ttl)
		})
	}
}

// requestKey derives the shared cache key for a request. Query parameters
// are included in canonical (sorted) order so equivalent URLs collide.
func requestKey(r *http.Request) string {
	key := "req:" + r.Method + ":" + r.URL.Path
	if enc := r.URL.Query().Encode(); enc != "" {
		key += "?" + enc
	}
	return key
}

// recorder tees the handler's response so the middleware can cache it after
// it has already been sent to the client.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

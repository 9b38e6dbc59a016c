package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jargon-IDSP/backend-sub001/cache"
	"github.com/Jargon-IDSP/backend-sub001/health"
	"github.com/Jargon-IDSP/backend-sub001/observe"
	"github.com/Jargon-IDSP/backend-sub001/pick"
	"github.com/Jargon-IDSP/backend-sub001/shared"
	"github.com/Jargon-IDSP/backend-sub001/store"
)

// Repository is the slice of the primary store the handlers use.
type Repository interface {
	ListIndustries(ctx context.Context) ([]store.Industry, error)
	ListTerms(ctx context.Context, f store.TermFilter) ([]store.Term, error)
	GetTerm(ctx context.Context, id string) (*store.Term, error)
}

// TTLs per resource. Industries change rarely; term lists change with
// content updates.
const (
	industriesTTL = time.Hour
	levelTermsTTL = 30 * time.Minute
)

// Server holds the handler dependencies.
type Server struct {
	repo      Repository
	orch      *cache.Orchestrator
	sharedC   *shared.Client
	index     *pick.Index
	metrics   *observe.CacheMetrics
	tracer    trace.Tracer
	log       *zap.Logger
	sharedTTL time.Duration
}

// ServerConfig wires a Server. Repo and Orch are required; the rest are
// optional and degrade to no-ops when absent.
type ServerConfig struct {
	Repo      Repository
	Orch      *cache.Orchestrator
	Shared    *shared.Client
	Index     *pick.Index
	Metrics   *observe.CacheMetrics
	Tracer    trace.Tracer
	Log       *zap.Logger
	SharedTTL time.Duration
}

// NewServer creates the API server.
func NewServer(cfg ServerConfig) *Server {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observe.NoopTracer()
	}
	return &Server{
		repo:      cfg.Repo,
		orch:      cfg.Orch,
		sharedC:   cfg.Shared,
		index:     cfg.Index,
		metrics:   cfg.Metrics,
		tracer:    tracer,
		log:       log,
		sharedTTL: cfg.SharedTTL,
	}
}

// Routes builds the router. metricsHandler and reg may be nil in tests.
func (s *Server) Routes(reg *health.Registry, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Read-through shared cache on the heavy list endpoints only; point
	// lookups and randomized picks are cheap or must not be cached.
	var readThrough func(http.Handler) http.Handler
	if s.sharedC != nil {
		readThrough = shared.Middleware(s.sharedC, s.sharedTTL, s.log)
	} else {
		readThrough = func(next http.Handler) http.Handler { return next }
	}

	api.Handle("/industries", readThrough(http.HandlerFunc(s.handleIndustries))).Methods(http.MethodGet)
	api.Handle("/levels/{levelId}/terms", readThrough(http.HandlerFunc(s.handleLevelTerms))).Methods(http.MethodGet)

	// "random" must be registered before the {id} route or mux would
	// capture it as an ID.
	api.HandleFunc("/terms/random", s.handleRandomTerm).Methods(http.MethodGet)
	api.HandleFunc("/terms/{id}", s.handleGetTerm).Methods(http.MethodGet)

	api.HandleFunc("/cache/flush", s.handleCacheFlush).Methods(http.MethodPost)
	api.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)

	if reg != nil {
		r.HandleFunc("/healthz", health.LivenessHandler()).Methods(http.MethodGet)
		r.HandleFunc("/readyz", health.ReadinessHandler(reg)).Methods(http.MethodGet)
	}
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	return r
}

package health

import (
	"context"
	"sync"
	"time"
)

// Status is the health of a component.
type Status int

const (
	// StatusHealthy means the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded means the service works but a best-effort collaborator
	// is down.
	StatusDegraded
	// StatusUnhealthy means the service cannot serve requests.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Status   Status
	Message  string
	Duration time.Duration
	Error    error
}

// Pinger is satisfied by the store and the shared cache client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check probes one component.
type Check struct {
	// Name identifies the component in the readiness report.
	Name string

	// Probe performs the check.
	Probe func(ctx context.Context) error

	// Advisory marks a component whose failure degrades the service
	// instead of making it unready.
	Advisory bool
}

// PingCheck builds a Check from anything with a Ping method.
func PingCheck(name string, p Pinger, advisory bool) Check {
	return Check{
		Name:     name,
		Probe:    p.Ping,
		Advisory: advisory,
	}
}

// Registry runs a fixed set of checks.
type Registry struct {
	mu     sync.RWMutex
	checks []Check
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a check.
func (r *Registry) Register(c Check) {
	r.mu.Lock()
	r.checks = append(r.checks, c)
	r.mu.Unlock()
}

// RunAll executes every check and returns per-component results.
func (r *Registry) RunAll(ctx context.Context) map[string]Result {
	r.mu.RLock()
	checks := make([]Check, len(r.checks))
	copy(checks, r.checks)
	r.mu.RUnlock()

	results := make(map[string]Result, len(checks))
	for _, c := range checks {
		start := time.Now()
		err := c.Probe(ctx)
		res := Result{Duration: time.Since(start)}
		switch {
		case err == nil:
			res.Status = StatusHealthy
			res.Message = "ok"
		case c.Advisory:
			res.Status = StatusDegraded
			res.Message = "unreachable, degraded"
			res.Error = err
		default:
			res.Status = StatusUnhealthy
			res.Message = "unreachable"
			res.Error = err
		}
		results[c.Name] = res
	}
	return results
}

// Overall folds per-component results into one status: any unhealthy
// component makes the service unhealthy; otherwise any degraded component
// makes it degraded.
func Overall(results map[string]Result) Status {
	status := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

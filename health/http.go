package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler reports that the process is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// checkResponse is the JSON shape of one component in the readiness report.
type checkResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// readyResponse is the JSON readiness report.
type readyResponse struct {
	Status string                   `json:"status"`
	Checks map[string]checkResponse `json:"checks,omitempty"`
}

// ReadinessHandler runs all checks. Degraded still answers 200: the service
// works without its advisory collaborators, just slower.
func ReadinessHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results := reg.RunAll(ctx)
		overall := Overall(results)

		resp := readyResponse{
			Status: overall.String(),
			Checks: make(map[string]checkResponse, len(results)),
		}
		for name, res := range results {
			cr := checkResponse{
				Status:   res.Status.String(),
				Message:  res.Message,
				Duration: res.Duration.String(),
			}
			if res.Error != nil {
				cr.Error = res.Error.Error()
			}
			resp.Checks[name] = cr
		}

		w.Header().Set("Content-Type", "application/json")
		if overall == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Package telemetry serves the /metrics and /healthz HTTP endpoints
// alongside the gRPC listener, in the teacher's pkg/metrics pattern of
// a small standalone http.Handler set registered on its own port.
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/notesd/internal/storage"
	"github.com/cuemby/notesd/internal/stats"
)

// status is the JSON body for /healthz, mirroring the teacher's
// HealthStatus shape without the cluster-specific component list.
type status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Uptime    string    `json:"uptime"`
}

// HealthHandler returns 200 while the store answers CountTotal within
// a short deadline, and 503 otherwise (the only failure mode this
// single-process server has: the bbolt file became unreachable).
func HealthHandler(store storage.Store, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		st := status{Status: "healthy", Timestamp: time.Now(), Uptime: time.Since(startedAt).String()}
		code := http.StatusOK

		if _, err := store.CountTotal(ctx); err != nil {
			st.Status = "unhealthy"
			st.Message = err.Error()
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(st)
	}
}

// Mux builds the /metrics and /healthz handler set for
// http.ListenAndServe.
func Mux(store storage.Store, startedAt time.Time) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", stats.Handler())
	mux.Handle("/healthz", HealthHandler(store, startedAt))
	return mux
}

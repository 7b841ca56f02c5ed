package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crypteax/crypteax-be/internal/http/respond"
	"github.com/crypteax/crypteax-be/internal/storage"
)

// HealthHandler returns uptime and dependency status.
type HealthHandler struct {
	startedAt time.Time
	checks    map[string]storage.Pinger
}

// NewHealthHandler creates a health endpoint handler probing each named dependency.
func NewHealthHandler(startedAt time.Time, checks map[string]storage.Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, checks: checks}
}

type healthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Register wires the handler into r.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	out := healthStatus{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if len(h.checks) > 0 {
		out.Dependencies = make(map[string]string, len(h.checks))
	}

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			out.Dependencies[name] = "down"
			out.Status = "DEGRADED"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Dependencies[name] = "up"
	}
	respond.JSON(w, status, out.Status, out)
}

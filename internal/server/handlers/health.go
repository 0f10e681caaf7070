package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"planetwars-server/internal/shared/response"
)

// Pinger is any dependency whose reachability the health check reports
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler reports on the named dependencies. A nil Pinger is
// reported as disabled.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	for name, dep := range h.deps {
		switch {
		case dep == nil:
			status[name] = "disabled"
		case dep.PingContext(ctx) != nil:
			logger.Warn("Dependency ping failed", "dependency", name)
			status[name] = "disconnected"
		default:
			status[name] = "connected"
		}
	}

	response.Success(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().Format(time.RFC3339),
		Dependencies: status,
	})
}

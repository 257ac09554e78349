package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/api"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthHandler reports the state of every registered dependency. Any
// failing one makes the service unhealthy.
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: map[string]Pinger{}}
}

func (h *HealthHandler) Register(name string, p Pinger) {
	h.checks[name] = p
}

// Healthy runs every check and reports the per-service status.
func (h *HealthHandler) Healthy(ctx context.Context) (bool, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	ok := true
	services := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			services[name] = "error"
			ok = false
			continue
		}
		services[name] = "ok"
	}
	return ok, services
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ok, services := h.Healthy(r.Context())

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  services,
	}

	status := http.StatusOK
	if !ok {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	_ = api.WriteJSON(w, status, response)
}

// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"visa-checker-backend/internal/models"
	"visa-checker-backend/pkg/utils"
)

// Pinger is a backing service whose reachability is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	deps   map[string]Pinger
	logger *zap.Logger
}

func NewHealthHandler(deps map[string]Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		deps:   deps,
		logger: logger,
	}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.SendJSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Visa document checker API",
	})
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			utils.SendJSONResponse(w, http.StatusServiceUnavailable, models.HealthResponse{
				Status:  "unhealthy",
				Message: name + " is unreachable",
			})
			return
		}
	}

	utils.SendJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Message: "Server is running",
	})
}

package handlers

import (
	"context"
	"net/http"

	"depot/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// Pinger reports backing-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	db        Pinger
	scheduler *background.JobScheduler
}

func NewHealthHandlers(db Pinger, scheduler *background.JobScheduler) *HealthHandlers {
	return &HealthHandlers{db: db, scheduler: scheduler}
}

// Health handles GET /health (liveness).
func (h *HealthHandlers) Health(c echo.Context) error {
	status := map[string]any{
		"status": "ok",
	}
	if h.scheduler != nil {
		status["scheduler"] = h.scheduler.Status()
	}
	return c.JSON(http.StatusOK, status)
}

// Ready handles GET /health/ready (readiness: backing store reachable).
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":   "degraded",
			"database": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"database": "ok",
	})
}

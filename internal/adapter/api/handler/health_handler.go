package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	backend string
	ping    Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(backend string, ping Pinger) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		ping:    ping,
	}
}

func SetupHealthHandler(backend string, ping Pinger) {
	healthHandler = NewHealthHandler(backend, ping)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]string{
		"status": "ok",
		"store":  h.backend,
		"time":   time.Now().Format(time.RFC3339),
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}

	return c.JSON(http.StatusOK, body)
}

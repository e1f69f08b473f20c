package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

// HealthHandlers handles health check and root endpoints
type HealthHandlers struct {
	version   string
	startedAt time.Time
	critical  map[string]CheckFunc
	optional  map[string]CheckFunc
	timeout   time.Duration
}

// NewHealthHandlers creates a new health handlers instance. database is
// required for readiness; other checks only degrade the health report.
func NewHealthHandlers(version string, database CheckFunc) *HealthHandlers {
	return &HealthHandlers{
		version:   version,
		startedAt: time.Now(),
		critical:  map[string]CheckFunc{"database": database},
		optional:  map[string]CheckFunc{},
		timeout:   2 * time.Second,
	}
}

// AddCheck registers a non-critical dependency such as redis or object storage
func (h *HealthHandlers) AddCheck(name string, check CheckFunc) {
	h.optional[name] = check
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// RootResponse is returned by GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Root godoc
// @Summary  Service banner
// @Tags     Health
// @Produce  json
// @Success  200  {object}  RootResponse
// @Router   / [get]
func (h *HealthHandlers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Message: "dealer directory api", Version: h.version})
}

// HealthCheck godoc
// @Summary      Dependency health
// @Description  Always 200; status is "degraded" when any dependency fails.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthStatus
// @Router       /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	for _, checks := range []map[string]CheckFunc{h.critical, h.optional} {
		for name, check := range checks {
			if err := check(ctx); err != nil {
				health.Services[name] = "unhealthy"
				health.Status = "degraded"
			} else {
				health.Services[name] = "healthy"
			}
		}
	}

	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck godoc
// @Summary  Readiness probe
// @Tags     Health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.critical))
	for name := range h.critical {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.critical[name](ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "not_ready",
				"message": name + " unavailable",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

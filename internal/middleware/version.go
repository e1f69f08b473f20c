package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion describes the version advertised on every response
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionHeader adds X-API-Version and, for a deprecated version, the
// sunset headers.
func VersionHeader(v APIVersion) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", v.Version)
			if v.Status == "deprecated" {
				h.Set("X-API-Deprecated", "true")
				if v.SunsetDate != nil {
					h.Set("X-API-Sunset", v.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", "299 dealerdir \"This API version is deprecated and will be removed on "+v.SunsetDate.Format("2006-01-02")+"\"")
				}
			}
			if v.Message != "" {
				h.Set("X-API-Message", v.Message)
			}
			return next(c)
		}
	}
}

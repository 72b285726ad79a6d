package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion describes one mounted API version
type APIVersion struct {
	Version    string
	Status     string // "active" or "deprecated"
	SunsetDate *time.Time
	Message    string
}

// VersionRoute mounts /<version> and tags every response with the
// version headers.
func VersionRoute(e *echo.Echo, v APIVersion) *echo.Group {
	group := e.Group("/" + v.Version)
	group.Use(VersionHeader(v))
	return group
}

func VersionHeader(v APIVersion) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set("X-API-Version", v.Version)
			if v.Message != "" {
				header.Set("X-API-Message", v.Message)
			}
			if v.Status == "deprecated" {
				header.Set("X-API-Deprecated", "true")
				if v.SunsetDate != nil {
					header.Set("X-API-Sunset", v.SunsetDate.Format(time.RFC3339))
				}
			}
			return next(c)
		}
	}
}

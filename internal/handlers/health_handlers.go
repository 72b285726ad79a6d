package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/caching"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db          Pinger
	cache       caching.CacheService
	minio       services.MinioService
	imageBucket string
	version     string
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, minio services.MinioService, imageBucket, version string) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		cache:       cache,
		minio:       minio,
		imageBucket: imageBucket,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Version   string            `json:"version"`
}

// LivenessCheck handles GET /health
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// ReadinessCheck handles GET /health/ready. Every dependency must answer.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
	}

	checks := map[string]func(context.Context) error{
		"database": h.db.Ping,
		"redis":    h.cache.Ping,
		"storage":  h.checkStorage,
	}
	for name, check := range checks {
		if err := check(ctx); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "not_ready"
		} else {
			health.Services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	exists, err := h.minio.BucketExists(ctx, h.imageBucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", h.imageBucket)
	}
	return nil
}

package middleware

import (
	"log"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimit allows limit requests per user per window for one scope. A
// failing rate-limit store lets the request through.
func RateLimit(cache caching.CacheService, scope string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return next(c)
			}

			limited, err := cache.IsRateLimited(ctx, scope+":"+userID.String(), limit, window)
			if err != nil {
				log.Printf("Rate limit check failed for %s: %v", scope, err)
				return next(c)
			}
			if limited {
				return common.SendTooManyRequestsError(c)
			}
			return next(c)
		}
	}
}

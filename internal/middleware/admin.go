package middleware

import (
	"log"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// RequireAdmin must run after Authenticator.Middleware
func RequireAdmin(accounts services.AccountService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			isAdmin, err := accounts.IsAdmin(ctx, userID)
			if err != nil {
				log.Printf("Admin check failed for user %s: %v", userID, err)
				return common.SendServerError(c, "Error checking permission")
			}
			if !isAdmin {
				return common.SendForbiddenError(c)
			}

			return next(c)
		}
	}
}

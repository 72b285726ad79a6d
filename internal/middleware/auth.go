package middleware

import (
	"errors"
	"log"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "user"

// StorefrontClaims are the claims read from identity provider tokens
type StorefrontClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and puts the caller's user id on the
// request context. Tokens are checked against the provider's JWKS when a
// JWKS URL is configured, otherwise against a shared HS256 secret.
type Authenticator struct {
	jwks     *keyfunc.JWKS
	verify   echo.MiddlewareFunc
	accounts services.AccountService
}

func NewAuthenticator(jwtSecret, jwksURL string, accounts services.AccountService) (*Authenticator, error) {
	config := echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &StorefrontClaims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}

	a := &Authenticator{accounts: accounts}
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		a.jwks = jwks
		config.KeyFunc = jwks.Keyfunc
	} else {
		if jwtSecret == "" {
			return nil, errors.New("either a JWT secret or a JWKS URL is required")
		}
		config.SigningKey = []byte(jwtSecret)
		config.SigningMethod = echojwt.AlgorithmHS256
	}

	verify, err := config.ToMiddleware()
	if err != nil {
		return nil, err
	}
	a.verify = verify
	return a, nil
}

// Middleware rejects unauthenticated requests with 401
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return a.verify(a.identify(next))
	}
}

func (a *Authenticator) identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return common.SendUnauthorizedError(c)
		}
		claims, ok := token.Claims.(*StorefrontClaims)
		if !ok {
			return common.SendUnauthorizedError(c)
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return common.SendUnauthorizedError(c)
		}

		ctx := c.Request().Context()
		user := &models.User{ID: userID, Email: claims.Email, FullName: claims.Name}
		if err := a.accounts.EnsureRegistered(ctx, user); err != nil {
			log.Printf("Failed to register user %s: %v", userID, err)
			return common.SendServerError(c, "Failed to load user")
		}

		c.SetRequest(c.Request().WithContext(common.WithUserID(ctx, userID)))
		return next(c)
	}
}

// Close stops the background JWKS refresh
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

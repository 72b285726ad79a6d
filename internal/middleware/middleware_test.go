package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubAccounts struct {
	mu          sync.Mutex
	admins      map[uuid.UUID]bool
	registered  []*models.User
	adminErr    error
	registerErr error
}

func (s *stubAccounts) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.adminErr != nil {
		return false, s.adminErr
	}
	return s.admins[userID], nil
}

func (s *stubAccounts) EnsureRegistered(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registerErr != nil {
		return s.registerErr
	}
	s.registered = append(s.registered, user)
	return nil
}

func (s *stubAccounts) PurgeExpired() int { return 0 }

func signToken(t *testing.T, secret string, claims StorefrontClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uuid.UUID) StorefrontClaims {
	return StorefrontClaims{
		Email: "ada@example.com",
		Name:  "Ada Lovelace",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// whoAmI echoes the user id the middleware chain put on the context
func whoAmI(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return c.String(http.StatusOK, "anonymous")
	}
	return c.String(http.StatusOK, userID.String())
}

func serve(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewAuthenticator_RequiresKeyMaterial(t *testing.T) {
	_, err := NewAuthenticator("", "", &stubAccounts{})
	assert.Error(t, err)
}

func TestAuthenticator(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		token      func(t *testing.T) string
		wantStatus int
	}{
		{
			name:       "valid token",
			token:      func(t *testing.T) string { return signToken(t, testSecret, validClaims(userID)) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			token:      func(t *testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			token:      func(t *testing.T) string { return signToken(t, "other", validClaims(userID)) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				claims := validClaims(userID)
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return signToken(t, testSecret, claims)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "subject is not a uuid",
			token: func(t *testing.T) string {
				claims := validClaims(userID)
				claims.Subject = "auth0|12345"
				return signToken(t, testSecret, claims)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &stubAccounts{}
			auth, err := NewAuthenticator(testSecret, "", accounts)
			require.NoError(t, err)
			defer auth.Close()

			e := echo.New()
			e.GET("/me", whoAmI, auth.Middleware())

			rec := serve(e, tt.token(t))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
				require.Len(t, accounts.registered, 1)
				assert.Equal(t, "ada@example.com", accounts.registered[0].Email)
				assert.Equal(t, "Ada Lovelace", accounts.registered[0].FullName)
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
				assert.Empty(t, accounts.registered)
			}
		})
	}
}

func TestAuthenticator_RegistrationFailure(t *testing.T) {
	accounts := &stubAccounts{registerErr: errors.New("db down")}
	auth, err := NewAuthenticator(testSecret, "", accounts)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/me", whoAmI, auth.Middleware())

	rec := serve(e, signToken(t, testSecret, validClaims(uuid.New())))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	adminID := uuid.New()
	shopperID := uuid.New()

	tests := []struct {
		name       string
		userID     uuid.UUID
		adminErr   error
		wantStatus int
	}{
		{name: "admin passes", userID: adminID, wantStatus: http.StatusOK},
		{name: "shopper is forbidden", userID: shopperID, wantStatus: http.StatusForbidden},
		{name: "lookup failure", userID: adminID, adminErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &stubAccounts{admins: map[uuid.UUID]bool{adminID: true}, adminErr: tt.adminErr}
			auth, err := NewAuthenticator(testSecret, "", accounts)
			require.NoError(t, err)

			e := echo.New()
			e.GET("/me", whoAmI, auth.Middleware(), RequireAdmin(accounts))

			rec := serve(e, signToken(t, testSecret, validClaims(tt.userID)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin_WithoutUser(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoAmI, RequireAdmin(&stubAccounts{}))

	rec := serve(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func withUser(userID uuid.UUID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := common.WithUserID(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := caching.NewRedisCacheService(client)

	userID := uuid.New()
	e := echo.New()
	e.GET("/me", whoAmI, withUser(userID), RateLimit(cache, "checkout", 2, time.Minute))

	assert.Equal(t, http.StatusOK, serve(e, "").Code)
	assert.Equal(t, http.StatusOK, serve(e, "").Code)

	rec := serve(e, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, serve(e, "").Code)
}

func TestRateLimit_StoreDownLetsRequestsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := caching.NewRedisCacheService(client)
	mr.Close()

	e := echo.New()
	e.GET("/me", whoAmI, withUser(uuid.New()), RateLimit(cache, "checkout", 1, time.Minute))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, "").Code)
	}
}

func TestVersionRoute(t *testing.T) {
	sunset := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	e := echo.New()
	v0 := VersionRoute(e, APIVersion{Version: "v0", Status: "deprecated", SunsetDate: &sunset, Message: "use v1"})
	v0.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/v0/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "v0", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))
	assert.Equal(t, "2027-01-01T00:00:00Z", rec.Header().Get("X-API-Sunset"))
	assert.Equal(t, "use v1", rec.Header().Get("X-API-Message"))
}

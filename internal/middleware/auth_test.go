package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"leasing-portal/pkg/config"
	"leasing-portal/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	token, err := jwtutil.GenerateToken("jordan@example.com", "user-123")
	require.NoError(t, err)

	c, rec := newAuthContext("Bearer " + token)

	require.NoError(t, AuthMiddleware(okHandler)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", c.Get("user_id"))
	assert.Equal(t, "jordan@example.com", c.Get("email"))
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	c, rec := newAuthContext("")

	require.NoError(t, AuthMiddleware(okHandler)(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	c, rec := newAuthContext("Token abc")

	require.NoError(t, AuthMiddleware(okHandler)(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := newAuthContext("Bearer not.a.real.token")

	require.NoError(t, AuthMiddleware(okHandler)(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDMiddleware_GeneratesWhenAbsent(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RequestIDMiddleware(okHandler)(c))

	assert.NotEmpty(t, rec.Header().Get(RequestIDKey))
}

func TestRequestIDMiddleware_PreservesIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDKey, "req-42")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RequestIDMiddleware(okHandler)(c))

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDKey))
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKey_FallsBackToRemoteAddr(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.Equal(t, "203.0.113.9", rateLimitKey(c))
}

func TestRateLimitKey_PrefersAuthenticatedUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "u42"})

	assert.Equal(t, "u42", rateLimitKey(c))
}

func TestRequireAuth_RejectsMissingBearerToken(t *testing.T) {
	s := &Server{auth: newFakeAuth(), logger: testLogger()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.requireAuth(func(c *echo.Context) error {
		called = true
		return nil
	})

	err := handler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.False(t, called)
}

func TestRequireAuth_AllowsValidBearerToken(t *testing.T) {
	auth := newFakeAuth()
	token, err := auth.IssueToken(Principal{UserID: "u1", Role: RoleCustomer})
	require.NoError(t, err)

	s := &Server{auth: auth, logger: testLogger()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen Principal
	handler := s.requireAuth(func(c *echo.Context) error {
		seen, _ = principalFrom(c)
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "u1", seen.UserID)
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	s := &Server{auth: newFakeAuth(), logger: testLogger()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.optionalAuth(func(c *echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
}

func TestRateLimited_NilLimiterAllowsRequest(t *testing.T) {
	s := &Server{logger: testLogger()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.rateLimited("graphql")(func(c *echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
}

func TestSecurityHeaders_SetsDefensiveHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := securityHeaders()(func(c *echo.Context) error { return nil })
	require.NoError(t, handler(c))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

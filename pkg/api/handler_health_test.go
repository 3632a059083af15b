package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/health"
)

func TestHealthHandler_HealthyWithNoMonitor(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.healthHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_DegradedWhenADependencyFails(t *testing.T) {
	mon := health.NewMonitor(map[string]health.Checker{
		"database": func(ctx context.Context) error { return nil },
		"llm":      func(ctx context.Context) error { return errors.New("unreachable") },
	}, testLogger())
	mon.CheckNow(context.Background())

	s := &Server{healthMon: mon}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.healthHandler(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler_HealthyWhenAllDependenciesPass(t *testing.T) {
	mon := health.NewMonitor(map[string]health.Checker{
		"database": func(ctx context.Context) error { return nil },
	}, testLogger())
	mon.CheckNow(context.Background())

	s := &Server{healthMon: mon}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.healthHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

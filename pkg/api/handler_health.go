package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/health"
	"github.com/tarsy-labs/storefront-coe/pkg/version"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Version string                   `json:"version"`
	Checks  map[string]health.Status `json:"checks,omitempty"`
}

// healthHandler handles GET /health, reporting the Monitor's cached
// dependency statuses rather than probing synchronously.
func (s *Server) healthHandler(c *echo.Context) error {
	resp := &HealthResponse{Status: "healthy", Version: version.Full()}
	if s.healthMon != nil {
		resp.Checks = s.healthMon.Statuses()
		if !s.healthMon.Healthy() {
			resp.Status = "degraded"
		}
	}
	if resp.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

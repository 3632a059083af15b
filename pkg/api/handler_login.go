package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// loginHandler handles POST /api/v1/login. No user-store or credential
// backend exists anywhere in the retrieved corpus (spec.md places real
// auth out of scope), so this issues a bearer token for any non-empty
// username/email plus password, resolving the admin role by a fixed
// "admin" username convention — a development stand-in, not a real
// identity provider.
func (s *Server) loginHandler(c *echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed login request")
	}

	identity := req.Username
	if identity == "" {
		identity = req.Email
	}
	if identity == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username or email and password are required")
	}

	role := RoleCustomer
	if identity == "admin" {
		role = RoleAdmin
	}

	token, err := s.auth.IssueToken(Principal{UserID: identity, Username: identity, Role: role})
	if err != nil {
		s.logger.Error("api: token issue failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, &LoginResponse{Token: token})
}

package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

// mapError maps a pkg/apperrors.Kind to the matching HTTP status, mirroring
// the teacher's mapServiceError (§7: ScriptPipeline and OrderBook raise
// typed errors to the transport layer, which maps them onto the response
// envelope; Agents/Orchestrator/Classifier never raise).
func mapError(err error) *echo.HTTPError {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidationFailure:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apperrors.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperrors.KindAuthorizationDenied:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case apperrors.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case apperrors.KindTransientDependency:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

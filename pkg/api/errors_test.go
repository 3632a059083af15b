package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

func TestMapError_MapsEachKindToItsStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.New(apperrors.KindValidationFailure, "bad input"), http.StatusBadRequest},
		{"not found", apperrors.ErrOrderNotFound, http.StatusNotFound},
		{"authorization denied", apperrors.ErrAuthorizationDeny, http.StatusForbidden},
		{"conflict", apperrors.ErrInsufficientStock, http.StatusConflict},
		{"transient dependency", apperrors.ErrDependencyTimeout, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			httpErr := mapError(tc.err)
			assert.Equal(t, tc.want, httpErr.Code)
		})
	}
}

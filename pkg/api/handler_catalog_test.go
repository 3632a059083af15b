package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

func TestListProductsHandler_ReturnsActiveProducts(t *testing.T) {
	cat := &fakeCatalog{products: []models.ProductProjection{
		{ID: "p1", Name: "Widget"},
		{ID: "p2", Name: "Gadget"},
	}}
	s := &Server{catalog: cat}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/list_products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.listProductsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")
	assert.Contains(t, rec.Body.String(), "Gadget")
}

func TestListProductsHandler_RespectsLimitQueryParam(t *testing.T) {
	cat := &fakeCatalog{products: []models.ProductProjection{
		{ID: "p1"}, {ID: "p2"}, {ID: "p3"},
	}}
	s := &Server{catalog: cat}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/list_products?limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.listProductsHandler(c))
	var resp ListProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 2)
}

func TestListProductsHandler_MapsCatalogErrorToHTTPStatus(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("db down")}
	s := &Server{catalog: cat}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/list_products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.listProductsHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

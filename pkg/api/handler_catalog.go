package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

const defaultListProductsLimit = 20

// listProductsHandler handles GET /graphql/list_products.
func (s *Server) listProductsHandler(c *echo.Context) error {
	limit := queryInt(c, "limit", defaultListProductsLimit)

	products, err := s.catalog.ListActive(c.Request().Context(), limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, &ListProductsResponse{Products: products})
}

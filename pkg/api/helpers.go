package api

import (
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// queryInt reads an integer query parameter, falling back to def when
// absent or unparseable.
func queryInt(c *echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseMoney parses a decimal amount string, defaulting to zero for a
// blank or malformed value rather than rejecting the whole request — tax,
// shipping, and discount are optional on create_order.
func parseMoney(s string) models.Money {
	if s == "" {
		return models.ZeroMoney()
	}
	m, err := models.NewMoneyFromString(s)
	if err != nil {
		return models.ZeroMoney()
	}
	return m
}

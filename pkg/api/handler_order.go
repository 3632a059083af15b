package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
)

// createOrderHandler handles POST /graphql/create_order. Per §6's mutation
// shape, a business-rule failure (insufficient stock, missing product)
// never becomes an HTTP error: it is reported inline as {ok: false,
// error: <kind>} so a client can distinguish "call failed" from "order
// rejected".
func (s *Server) createOrderHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed order request")
	}
	if len(req.Lines) == 0 {
		return c.JSON(http.StatusOK, &CreateOrderResponse{
			OK: false, Message: "order must have at least one line",
			Error: string(apperrors.KindValidationFailure),
		})
	}

	lines := make([]orderbook.LineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, orderbook.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := s.orderBook.CreateOrder(c.Request().Context(), orderbook.CreateOrderInput{
		UserID:          principal.UserID,
		SessionID:       req.SessionID,
		Lines:           lines,
		Tax:             parseMoney(req.Tax),
		Shipping:        parseMoney(req.Shipping),
		Discount:        parseMoney(req.Discount),
		ShippingAddress: req.ShippingAddress,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
	})
	if err != nil {
		return c.JSON(http.StatusOK, &CreateOrderResponse{
			OK: false, Message: "order could not be created",
			Error: string(apperrors.KindOf(err)),
		})
	}

	return c.JSON(http.StatusOK, &CreateOrderResponse{OK: true, Order: order, Message: "order created"})
}

// cancelOrderHandler handles POST /graphql/cancel_order (requires auth).
func (s *Server) cancelOrderHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)

	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return c.JSON(http.StatusOK, &CancelOrderResponse{
			OK: false, Message: "order_id is required",
			Error: string(apperrors.KindValidationFailure),
		})
	}

	existing, err := s.orderBook.GetByID(c.Request().Context(), req.OrderID)
	if err != nil {
		return c.JSON(http.StatusOK, &CancelOrderResponse{
			OK: false, Message: "order not found",
			Error: string(apperrors.KindOf(err)),
		})
	}
	if !principal.IsAdmin() && existing.UserID != "" && existing.UserID != principal.UserID {
		return c.JSON(http.StatusOK, &CancelOrderResponse{
			OK: false, Message: "not authorized to cancel this order",
			Error: string(apperrors.KindAuthorizationDenied),
		})
	}

	order, err := s.orderBook.Cancel(c.Request().Context(), req.OrderID, req.Reason)
	if err != nil {
		return c.JSON(http.StatusOK, &CancelOrderResponse{
			OK: false, Message: "order could not be cancelled",
			Error: string(apperrors.KindOf(err)),
		})
	}

	return c.JSON(http.StatusOK, &CancelOrderResponse{OK: true, Order: order, Message: "order cancelled"})
}

// orderQueryHandler handles GET /graphql/order/:id (requires auth).
// Non-owner, non-admin lookups and genuinely missing orders are
// deliberately indistinguishable: both return a null order (§6).
func (s *Server) orderQueryHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)
	id := c.Param("id")

	order, err := s.orderBook.GetByID(c.Request().Context(), id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return c.JSON(http.StatusOK, &OrderQueryResponse{Order: nil})
		}
		return mapError(err)
	}
	if !principal.IsAdmin() && order.UserID != "" && order.UserID != principal.UserID {
		return c.JSON(http.StatusOK, &OrderQueryResponse{Order: nil})
	}
	return c.JSON(http.StatusOK, &OrderQueryResponse{Order: order})
}

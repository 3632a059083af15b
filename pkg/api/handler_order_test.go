package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

func TestCreateOrderHandler_RejectsEmptyLinesInline(t *testing.T) {
	s := &Server{orderBook: newFakeOrderBook()}
	e := echo.New()
	body := `{"lines":[]}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/create_order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.createOrderHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, string(apperrors.KindValidationFailure), resp.Error)
}

func TestCreateOrderHandler_ReturnsCreatedOrder(t *testing.T) {
	ob := newFakeOrderBook()
	s := &Server{orderBook: ob}
	e := echo.New()
	body := `{"lines":[{"product_id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/create_order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "u1", Role: RoleCustomer})

	require.NoError(t, s.createOrderHandler(c))

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "u1", resp.Order.UserID)
}

func TestCreateOrderHandler_ReportsOrderBookFailureInline(t *testing.T) {
	ob := newFakeOrderBook()
	ob.createErr = apperrors.ErrInsufficientStock
	s := &Server{orderBook: ob}
	e := echo.New()
	body := `{"lines":[{"product_id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/create_order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.createOrderHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, string(apperrors.KindConflict), resp.Error)
}

func TestCancelOrderHandler_RejectsNonOwnerInline(t *testing.T) {
	ob := newFakeOrderBook()
	ob.orders["order-1"] = orderOwnedBy("owner-1")
	s := &Server{orderBook: ob}
	e := echo.New()
	body := `{"order_id":"order-1"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/cancel_order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "other-user", Role: RoleCustomer})

	require.NoError(t, s.cancelOrderHandler(c))

	var resp CancelOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, string(apperrors.KindAuthorizationDenied), resp.Error)
}

func TestCancelOrderHandler_AllowsOwnerToCancel(t *testing.T) {
	ob := newFakeOrderBook()
	ob.orders["order-1"] = orderOwnedBy("owner-1")
	s := &Server{orderBook: ob}
	e := echo.New()
	body := `{"order_id":"order-1"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/cancel_order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "owner-1", Role: RoleCustomer})

	require.NoError(t, s.cancelOrderHandler(c))

	var resp CancelOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

// orderQueryTestEcho registers the :id route for real, routing through
// echo's own router rather than hand-crafting path params, mirroring the
// teacher's timelineTestEcho helper. When principal is non-nil it is
// stashed before the handler runs, standing in for requireAuth having
// already decoded a bearer token.
func orderQueryTestEcho(s *Server, principal *Principal) *echo.Echo {
	e := echo.New()
	e.GET("/graphql/order/:id", func(c *echo.Context) error {
		if principal != nil {
			c.Set(principalContextKey, *principal)
		}
		return s.orderQueryHandler(c)
	})
	return e
}

func TestOrderQueryHandler_ReturnsNullForMissingOrder(t *testing.T) {
	s := &Server{orderBook: newFakeOrderBook()}
	e := orderQueryTestEcho(s, nil)
	req := httptest.NewRequest(http.MethodGet, "/graphql/order/does-not-exist", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp OrderQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Order)
}

func TestOrderQueryHandler_ReturnsNullForNonOwnerNonAdmin(t *testing.T) {
	ob := newFakeOrderBook()
	ob.orders["order-1"] = orderOwnedBy("owner-1")
	s := &Server{orderBook: ob}
	e := orderQueryTestEcho(s, &Principal{UserID: "someone-else", Role: RoleCustomer})
	req := httptest.NewRequest(http.MethodGet, "/graphql/order/order-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp OrderQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Order)
}

func TestOrderQueryHandler_AdminCanSeeAnyOrder(t *testing.T) {
	ob := newFakeOrderBook()
	ob.orders["order-1"] = orderOwnedBy("owner-1")
	s := &Server{orderBook: ob}
	e := orderQueryTestEcho(s, &Principal{UserID: "admin-1", Role: RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/graphql/order/order-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp OrderQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Order)
	assert.Equal(t, "owner-1", resp.Order.UserID)
}

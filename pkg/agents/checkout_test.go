package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
)

type fakeOrderBook struct {
	order *models.Order
	err   error
}

func (f *fakeOrderBook) CreateOrder(ctx context.Context, in orderbook.CreateOrderInput) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := *f.order
	return &o, nil
}
func (f *fakeOrderBook) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	return nil, nil
}
func (f *fakeOrderBook) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	return nil, nil
}

func sessionWithOneResult() *models.Session {
	return &models.Session{
		SessionID: "s1",
		LastSearchResults: []models.ProductProjection{
			{ID: "p1", Name: "Zapato Runner", FinalPrice: models.NewMoney(80), UnitPrice: models.NewMoney(80), QuantityAvailable: 10, Status: models.StockActive},
		},
	}
}

func TestCheckout_NullStageEntersConfirm(t *testing.T) {
	c := NewCheckout(&fakeOrderBook{}, nil)
	sess := sessionWithOneResult()

	resp := c.Process(context.Background(), sess)
	assert.Equal(t, models.CheckoutStageConfirm, sess.CheckoutStage)
	assert.Contains(t, resp.ReplyText, "Zapato Runner")
}

func TestCheckout_ConfirmAffirmativeMovesToAddress(t *testing.T) {
	c := NewCheckout(&fakeOrderBook{}, nil)
	sess := sessionWithOneResult()
	sess.CheckoutStage = models.CheckoutStageConfirm
	sess.RecentUtterance = "si"

	resp := c.Process(context.Background(), sess)
	assert.Equal(t, models.CheckoutStageAddress, sess.CheckoutStage)
	assert.NotEmpty(t, resp.ReplyText)
}

func TestCheckout_ConfirmNegativeWithNoAlternativesResetsStage(t *testing.T) {
	c := NewCheckout(&fakeOrderBook{}, nil)
	sess := sessionWithOneResult()
	sess.CheckoutStage = models.CheckoutStageConfirm
	sess.RecentUtterance = "no gracias"

	resp := c.Process(context.Background(), sess)
	assert.Equal(t, models.CheckoutStage(""), sess.CheckoutStage)
	assert.NotEmpty(t, resp.ReplyText)
}

func TestCheckout_AddressCompletesOrder(t *testing.T) {
	order := &models.Order{ID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", Total: models.NewMoney(80)}
	c := NewCheckout(&fakeOrderBook{order: order}, nil)
	sess := sessionWithOneResult()
	sess.CheckoutStage = models.CheckoutStageAddress
	sess.RecentUtterance = "talla 42 Av Siempre Viva 123"

	resp := c.Process(context.Background(), sess)
	assert.Equal(t, models.CheckoutStageComplete, sess.CheckoutStage)
	assert.Contains(t, resp.ReplyText, "ORD-AAAAAAAA")
	assert.Empty(t, sess.Cart)
}

func TestCheckout_AddressWithoutSizeReAsks(t *testing.T) {
	c := NewCheckout(&fakeOrderBook{}, nil)
	sess := sessionWithOneResult()
	sess.CheckoutStage = models.CheckoutStageAddress
	sess.RecentUtterance = "mi direccion es Av Siempre Viva"

	resp := c.Process(context.Background(), sess)
	assert.Equal(t, models.CheckoutStageAddress, sess.CheckoutStage)
	assert.NotEmpty(t, resp.ReplyText)
}

func TestCheckout_InsufficientStockKeepsConfirmStage(t *testing.T) {
	c := NewCheckout(&fakeOrderBook{err: apperrors.InsufficientStock("p1", 0, 1)}, nil)
	sess := sessionWithOneResult()
	sess.CheckoutStage = models.CheckoutStageAddress
	sess.RecentUtterance = "talla 42 Av Siempre Viva 123"

	resp := c.Process(context.Background(), sess)
	require.Equal(t, models.CheckoutStageConfirm, sess.CheckoutStage)
	assert.Equal(t, string(apperrors.KindConflict), resp.Metadata["error"])
}

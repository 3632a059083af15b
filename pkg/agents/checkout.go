package agents

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
)

// sizeRe matches a bare shoe-size integer in [35,50] (§4.6.3 "address" step).
var sizeRe = regexp.MustCompile(`\b(3[5-9]|4[0-9]|50)\b`)

// Checkout drives the conversational staged-capture state machine over
// Session.CheckoutStage (§4.6.3), distinct from ScriptPipeline's own
// continuation over ScriptSession (§4.8): this agent places a single-item
// order directly via OrderBook for a product the shopper selected through
// ordinary chat (LastSearchResults), not through a script brief.
type Checkout struct {
	orderBook orderbook.OrderBook
	logger    *slog.Logger
}

func NewCheckout(ob orderbook.OrderBook, logger *slog.Logger) *Checkout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checkout{orderBook: ob, logger: logger}
}

func (c *Checkout) Name() Name { return NameCheckout }

func (c *Checkout) CanHandle(session *models.Session) bool {
	return session.LastIntent == models.IntentCheckout || session.CheckoutStage != ""
}

func (c *Checkout) Process(ctx context.Context, sess *models.Session) AgentResponse {
	switch sess.CheckoutStage {
	case "", models.CheckoutStageConfirm:
		return c.processConfirm(ctx, sess)
	case models.CheckoutStageAddress:
		return c.processAddress(ctx, sess)
	default:
		sess.CheckoutStage = ""
		return c.processConfirm(ctx, sess)
	}
}

func (c *Checkout) processConfirm(ctx context.Context, sess *models.Session) AgentResponse {
	style := sess.Style

	if sess.CheckoutStage == "" {
		product, ok := c.selectedProduct(sess)
		if !ok {
			sess.CheckoutStage = ""
			return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutNoMoreAlts)}
		}
		sess.CheckoutStage = models.CheckoutStageConfirm
		return AgentResponse{
			Agent:     NameCheckout,
			ReplyText: styles.Render(style, styles.KindCheckoutConfirmAsk, product.Name, money(product.FinalPrice)),
		}
	}

	affirmative, negative := styles.YesNo(sess.RecentUtterance)
	switch {
	case affirmative:
		sess.CheckoutStage = models.CheckoutStageAddress
		return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutAddressAsk)}
	case negative:
		if !advanceSelection(sess) {
			sess.CheckoutStage = ""
			return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutNoMoreAlts)}
		}
		product, ok := c.selectedProduct(sess)
		if !ok {
			sess.CheckoutStage = ""
			return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutNoMoreAlts)}
		}
		return AgentResponse{
			Agent:     NameCheckout,
			ReplyText: styles.Render(style, styles.KindCheckoutConfirmAsk, product.Name, money(product.FinalPrice)),
		}
	default:
		product, ok := c.selectedProduct(sess)
		if !ok {
			sess.CheckoutStage = ""
			return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutNoMoreAlts)}
		}
		return AgentResponse{
			Agent:     NameCheckout,
			ReplyText: styles.Render(style, styles.KindCheckoutConfirmAsk, product.Name, money(product.FinalPrice)),
		}
	}
}

func (c *Checkout) processAddress(ctx context.Context, sess *models.Session) AgentResponse {
	style := sess.Style

	size, address, ok := parseSizeAndAddress(sess.RecentUtterance)
	if !ok {
		return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutAddressAsk)}
	}

	product, ok := c.selectedProduct(sess)
	if !ok {
		sess.CheckoutStage = ""
		return AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutNoMoreAlts)}
	}

	sess.ShippingAddress = address
	if sess.Slots == nil {
		sess.Slots = make(map[string]string, 1)
	}
	sess.Slots["size"] = strconv.Itoa(size)

	order, err := c.orderBook.CreateOrder(ctx, orderbook.CreateOrderInput{
		UserID:          sess.UserID,
		SessionID:       sess.SessionID,
		Lines:           []orderbook.LineRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: address,
	})
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindNotFound, apperrors.KindConflict:
			sess.CheckoutStage = models.CheckoutStageConfirm
			resp := AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutOutOfStock)}
			return errorMetadata(resp, string(apperrors.KindOf(err)))
		default:
			resp := AgentResponse{Agent: NameCheckout, ReplyText: styles.Render(style, styles.KindCheckoutRetry)}
			return errorMetadata(resp, string(apperrors.KindOf(err)))
		}
	}

	sess.CheckoutStage = models.CheckoutStageComplete
	sess.ClearCart()
	reply := styles.Render(style, styles.KindCheckoutOrderDone, models.OrderNumber(order.ID), money(order.Total))
	resp := AgentResponse{Agent: NameCheckout, ReplyText: reply}
	return withMetadata(resp, "order_id", order.ID)
}

// selectedProduct returns the product currently under consideration: the
// first of the session's selected product ids, falling back to the first
// search result.
func (c *Checkout) selectedProduct(sess *models.Session) (models.ProductProjection, bool) {
	if len(sess.SelectedProductIDs) > 0 {
		id := sess.SelectedProductIDs[0]
		for _, p := range sess.LastSearchResults {
			if p.ID == id {
				return p, true
			}
		}
	}
	if len(sess.LastSearchResults) > 0 {
		return sess.LastSearchResults[0], true
	}
	return models.ProductProjection{}, false
}

// advanceSelection drops the current candidate from consideration, letting
// the next LastSearchResults entry become selected.
func advanceSelection(sess *models.Session) bool {
	if len(sess.SelectedProductIDs) > 0 {
		sess.SelectedProductIDs = sess.SelectedProductIDs[1:]
	} else if len(sess.LastSearchResults) > 0 {
		sess.LastSearchResults = sess.LastSearchResults[1:]
	}
	return len(sess.LastSearchResults) > 0 || len(sess.SelectedProductIDs) > 0
}

func parseSizeAndAddress(text string) (size int, address string, ok bool) {
	match := sizeRe.FindString(text)
	if match == "" {
		return 0, "", false
	}
	size, _ = strconv.Atoi(match)
	address = strings.TrimSpace(sizeRe.ReplaceAllString(text, ""))
	if address == "" {
		return 0, "", false
	}
	return size, address, true
}

func money(m models.Money) string {
	return "$" + m.StringFixed(2)
}

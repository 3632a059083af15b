package models

import "time"

// OrderStatus is the order lifecycle state. Transitions are validated by
// pkg/orderbook against the graph in spec.md §4.4.
type OrderStatus string

const (
	OrderStatusDraft       OrderStatus = "draft"
	OrderStatusConfirmed   OrderStatus = "confirmed"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCancelled   OrderStatus = "cancelled"
	OrderStatusRefunded    OrderStatus = "refunded"
)

// PaymentStatus tracks the payment side independently of order status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// allowedTransitions is the status graph from spec.md §4.4.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// CanTransition reports whether moving from `from` to `to` is permitted.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderLine is one frozen line item of a committed order. Name/SKU/price are
// snapshotted at purchase time so later catalog edits never retroactively
// change a past order.
type OrderLine struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	Discount    Money  `json:"discount"`
}

// Subtotal returns UnitPrice*Quantity - Discount for this line.
func (l OrderLine) Subtotal() Money {
	return l.UnitPrice.MulInt(l.Quantity).Sub(l.Discount)
}

// Order is the order header plus its lines.
type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Subtotal        Money         `json:"subtotal"`
	Tax             Money         `json:"tax"`
	Shipping        Money         `json:"shipping"`
	Discount        Money         `json:"discount"`
	Total           Money         `json:"total"`
	ShippingAddress string        `json:"shipping_address"`
	ContactEmail    string        `json:"contact_email,omitempty"`
	ContactPhone    string        `json:"contact_phone,omitempty"`
	SessionID       string        `json:"session_id,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Lines           []OrderLine   `json:"lines,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// RecomputeTotals recalculates Subtotal from Lines and Total from
// Subtotal+Tax+Shipping-Discount, floored at 0, per spec.md §3.
func (o *Order) RecomputeTotals() {
	subtotal := ZeroMoney()
	for _, l := range o.Lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount).FloorZero()
}

// OrderNumber renders the human-facing order number per spec.md §4.6.3:
// ORD-{first 8 hex of id, uppercase}. Order ids are UUIDv4 strings, whose
// first 8 characters (before the first dash) are already hex digits.
func OrderNumber(id string) string {
	prefix := id
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	for len(prefix) < 8 {
		prefix += "0"
	}
	upper := make([]byte, len(prefix))
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c >= 'a' && c <= 'f' {
			c = c - 'a' + 'A'
		}
		upper[i] = c
	}
	return "ORD-" + string(upper)
}

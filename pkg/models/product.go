package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is whether a catalog row is eligible to be sold.
type StockStatus string

const (
	StockActive   StockStatus = "active"
	StockInactive StockStatus = "inactive"
)

// ProductProjection is an immutable snapshot of a catalog row at read time.
// Invariant: FinalPrice = max(0, UnitPrice - percent discount - fixed
// discount) when OnSale, else FinalPrice == UnitPrice.
type ProductProjection struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Barcode             string            `json:"barcode,omitempty"`
	Brand               string            `json:"brand,omitempty"`
	Category            string            `json:"category,omitempty"`
	SKU                 string            `json:"sku,omitempty"`
	UnitPrice           Money             `json:"unit_price"`
	FinalPrice          Money             `json:"final_price"`
	DiscountPercent     *decimal.Decimal  `json:"discount_percent,omitempty"`
	PromotionText       string            `json:"promotion_text,omitempty"`
	PromotionValidUntil *time.Time        `json:"promotion_valid_until,omitempty"`
	QuantityAvailable   int               `json:"quantity_available"`
	Status              StockStatus       `json:"status"`
	Location            map[string]string `json:"location,omitempty"`
}

// OnSale reports whether the projection carries an active discount.
func (p ProductProjection) OnSale() bool {
	return !p.FinalPrice.Equal(p.UnitPrice) && p.FinalPrice.LessThan(p.UnitPrice)
}

// PromotionValid reports whether the promotion has a valid-until date that
// has not yet passed (§4.9: "active sale with still-valid date" scores
// higher than a sale with no valid-until date).
func (p ProductProjection) PromotionValid(now time.Time) bool {
	return p.PromotionValidUntil != nil && p.PromotionValidUntil.After(now)
}

// Available reports whether the product can be sold right now.
func (p ProductProjection) Available() bool {
	return p.Status == StockActive && p.QuantityAvailable > 0
}

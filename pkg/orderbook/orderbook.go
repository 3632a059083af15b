// Package orderbook implements OrderBook: the sole writer of inventory,
// committing an order and its stock decrement atomically (§4.4, §5 "no
// operation cancels a downstream OrderBook transaction once stock has been
// decremented"). Grounded on the all-or-nothing settlement idiom of a
// clearing house: every row touched is locked for the lifetime of the
// transaction and nothing is visible until commit.
package orderbook

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// OrderBook is the contract for creating and cancelling orders.
type OrderBook interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*models.Order, error)
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
}

// CreateOrderInput is the fully-resolved line-item set (barcode resolution
// and pricing already done by the caller) plus shipping/contact details.
type CreateOrderInput struct {
	UserID          string
	SessionID       string
	Lines           []LineRequest
	Tax             models.Money
	Shipping        models.Money
	Discount        models.Money
	ShippingAddress string
	ContactEmail    string
	ContactPhone    string
	Notes           string
}

type LineRequest struct {
	ProductID string
	Quantity  int
}

const txTimeout = 10 * time.Second

type pgOrderBook struct {
	pool *pgxpool.Pool
}

func NewOrderBook(pool *pgxpool.Pool) OrderBook {
	return &pgOrderBook{pool: pool}
}

// CreateOrder locks every referenced product row (in product-id order, to
// avoid deadlocks between concurrent carts sharing two products), validates
// stock, decrements it, and inserts the order and its lines — all inside a
// single transaction. A stock shortfall aborts the whole transaction; no
// partial decrement is ever visible.
func (ob *pgOrderBook) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("lines", "order must have at least one line")
	}

	tx, err := ob.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "begin order transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	order := &models.Order{
		UserID:          in.UserID,
		SessionID:       in.SessionID,
		Status:          models.OrderStatusDraft,
		PaymentStatus:   models.PaymentPending,
		Tax:             in.Tax,
		Shipping:        in.Shipping,
		Discount:        in.Discount,
		ShippingAddress: in.ShippingAddress,
		ContactEmail:    in.ContactEmail,
		ContactPhone:    in.ContactPhone,
		Notes:           in.Notes,
	}

	sortedLines := make([]LineRequest, len(in.Lines))
	copy(sortedLines, in.Lines)
	sort.Slice(sortedLines, func(i, j int) bool { return sortedLines[i].ProductID < sortedLines[j].ProductID })

	for _, lineReq := range sortedLines {
		line, err := lockAndDecrement(ctx, tx, lineReq.ProductID, lineReq.Quantity)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, *line)
	}

	order.RecomputeTotals()

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, payment_status, subtotal, tax, shipping, discount, total,
			shipping_address, contact_email, contact_phone, session_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at
	`, order.UserID, order.Status, order.PaymentStatus, order.Subtotal, order.Tax, order.Shipping,
		order.Discount, order.Total, order.ShippingAddress, order.ContactEmail, order.ContactPhone,
		order.SessionID, order.Notes)

	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "insert order", err)
	}

	for i := range order.Lines {
		l := &order.Lines[i]
		l.OrderID = order.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, product_name, sku, quantity, unit_price, discount)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, l.OrderID, l.ProductID, l.ProductName, l.SKU, l.Quantity, l.UnitPrice, l.Discount).Scan(&l.ID); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "insert order line", err)
		}
	}

	order.Status = models.OrderStatusConfirmed
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, order.ID, order.Status); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "confirm order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "commit order transaction", err)
	}

	return order, nil
}

// lockAndDecrement takes SELECT ... FOR UPDATE on one product row, checks
// availability, decrements quantity_available, and returns a frozen
// OrderLine snapshot of the product's current name/sku/*final* (discount-
// applied) price, per §4.4 step 4.
func lockAndDecrement(ctx context.Context, tx pgx.Tx, productID string, qty int) (*models.OrderLine, error) {
	var (
		name            string
		sku             string
		unitPrice       models.Money
		discountPercent *decimal.Decimal
		available       int
		status          string
	)

	row := tx.QueryRow(ctx, `
		SELECT name, sku, unit_price, discount_percent, quantity_available, status
		FROM products WHERE id = $1 FOR UPDATE
	`, productID)

	if err := row.Scan(&name, &sku, &unitPrice, &discountPercent, &available, &status); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ProductNotFound(productID)
		}
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "lock product row", err)
	}

	if status != string(models.StockActive) {
		return nil, apperrors.ProductNotFound(productID)
	}
	if available < qty {
		return nil, apperrors.InsufficientStock(productID, available, qty)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products SET quantity_available = quantity_available - $2, updated_at = now() WHERE id = $1
	`, productID, qty); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "decrement stock", err)
	}

	finalPrice := unitPrice
	if discountPercent != nil {
		finalPrice = unitPrice.MulPercent(*discountPercent)
	}

	return &models.OrderLine{
		ProductID:   productID,
		ProductName: name,
		SKU:         sku,
		Quantity:    qty,
		UnitPrice:   finalPrice,
		Discount:    models.ZeroMoney(),
	}, nil
}

// Cancel transitions an order to cancelled and restores stock for each
// line, in the same all-or-nothing transaction shape as CreateOrder.
func (ob *pgOrderBook) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := ob.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "begin cancel transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	order, err := getByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
		return nil, apperrors.InvalidOrderState(string(order.Status), string(models.OrderStatusCancelled))
	}

	for _, l := range order.Lines {
		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity_available = quantity_available + $2, updated_at = now() WHERE id = $1
		`, l.ProductID, l.Quantity); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "restore stock", err)
		}
	}

	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = models.PaymentRefunded
	if reason != "" {
		if order.Notes != "" {
			order.Notes += "; " + reason
		} else {
			order.Notes = reason
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, payment_status = $3, notes = $4, updated_at = now() WHERE id = $1
	`, order.ID, order.Status, order.PaymentStatus, order.Notes); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "cancel order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "commit cancel transaction", err)
	}

	return order, nil
}

func (ob *pgOrderBook) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order models.Order
	row := ob.pool.QueryRow(ctx, `
		SELECT id, user_id, status, payment_status, subtotal, tax, shipping, discount, total,
			shipping_address, contact_email, contact_phone, session_id, notes, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID)

	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.PaymentStatus, &order.Subtotal,
		&order.Tax, &order.Shipping, &order.Discount, &order.Total, &order.ShippingAddress,
		&order.ContactEmail, &order.ContactPhone, &order.SessionID, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "get order", err)
	}

	lines, err := getOrderLines(ctx, ob.pool, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func getByIDTx(ctx context.Context, tx pgx.Tx, orderID string) (*models.Order, error) {
	var order models.Order
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, status, payment_status, subtotal, tax, shipping, discount, total,
			shipping_address, contact_email, contact_phone, session_id, notes, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE
	`, orderID)

	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.PaymentStatus, &order.Subtotal,
		&order.Tax, &order.Shipping, &order.Discount, &order.Total, &order.ShippingAddress,
		&order.ContactEmail, &order.ContactPhone, &order.SessionID, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "lock order", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, order_id, product_id, product_name, sku, quantity, unit_price, discount
		FROM order_lines WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "query order lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.SKU, &l.Quantity, &l.UnitPrice, &l.Discount); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "scan order line", err)
		}
		order.Lines = append(order.Lines, l)
	}

	return &order, rows.Err()
}

func getOrderLines(ctx context.Context, pool *pgxpool.Pool, orderID string) ([]models.OrderLine, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, sku, quantity, unit_price, discount
		FROM order_lines WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "query order lines", err)
	}
	defer rows.Close()

	var out []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.SKU, &l.Quantity, &l.UnitPrice, &l.Discount); err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "scan order line", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

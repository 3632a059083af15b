// Package catalog implements Catalog: read access to the product
// projection used by search, recommendation, and script resolution (§4.3).
package catalog

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Catalog is the read-only product projection contract.
type Catalog interface {
	ListActive(ctx context.Context, limit int) ([]models.ProductProjection, error)
	SearchByKeywords(ctx context.Context, text string, limit int) ([]models.ProductProjection, error)
	GetByBarcodes(ctx context.Context, barcodes []string) ([]models.ProductProjection, error)
	GetByID(ctx context.Context, id string) (*models.ProductProjection, error)
}

const opTimeout = 5 * time.Second

type pgCatalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) Catalog {
	return &pgCatalog{pool: pool}
}

const productColumns = `id, name, barcode, brand, category, sku, unit_price, discount_percent,
	promotion_text, promotion_valid_until, quantity_available, status, location`

func (c *pgCatalog) ListActive(ctx context.Context, limit int) ([]models.ProductProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE status = 'active'
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "list active products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// stopWords and minTokenLen implement the tokenizer's drop rules: discard
// words of length <= 2 and common Spanish stop words before querying.
var stopWords = map[string]bool{
	"de": true, "la": true, "el": true, "en": true, "con": true,
	"para": true, "por": true, "un": true, "una": true, "los": true,
	"las": true, "y": true, "que": true, "se": true, "me": true,
}

var tokenSplit = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenize applies the same drop rules used internally by SearchByKeywords
// (tokens of length <=2 and the stop list dropped) so callers — notably the
// Retriever agent — can detect an empty token set before querying (§4.6.1).
func Tokenize(text string) []string {
	return tokenize(text)
}

func tokenize(text string) []string {
	words := tokenSplit.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 2 || stopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (c *pgCatalog) SearchByKeywords(ctx context.Context, text string, limit int) ([]models.ProductProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tokens := tokenize(text)
	if len(tokens) == 0 {
		// §4.3: "empty token list falls back to the raw string" used as a
		// single token, rather than returning no results.
		tokens = []string{text}
	}

	patterns := make([]string, len(tokens))
	for i, tok := range tokens {
		patterns[i] = "%" + tok + "%"
	}

	rows, err := c.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE status = 'active'
		  AND (name ILIKE ANY($1) OR sku ILIKE ANY($1))
		ORDER BY name ASC
		LIMIT $2
	`, patterns, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "search products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (c *pgCatalog) GetByBarcodes(ctx context.Context, barcodes []string) ([]models.ProductProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if len(barcodes) == 0 {
		return nil, nil
	}

	rows, err := c.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE barcode = ANY($1)
	`, barcodes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "get products by barcode", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (c *pgCatalog) GetByID(ctx context.Context, id string) (*models.ProductProjection, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := c.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ProductNotFound(id)
		}
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "get product by id", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.ProductProjection, error) {
	var p models.ProductProjection
	var location []byte
	var discountPercent *decimal.Decimal
	var promoValidUntil *time.Time
	var status string

	if err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.Brand, &p.Category, &p.SKU,
		&p.UnitPrice, &discountPercent, &p.PromotionText, &promoValidUntil,
		&p.QuantityAvailable, &status, &location); err != nil {
		return nil, err
	}
	p.Status = models.StockStatus(status)
	p.DiscountPercent = discountPercent
	p.PromotionValidUntil = promoValidUntil

	if discountPercent != nil {
		p.FinalPrice = p.UnitPrice.MulPercent(*discountPercent)
	} else {
		p.FinalPrice = p.UnitPrice
	}

	if len(location) > 0 {
		if err := json.Unmarshal(location, &p.Location); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]models.ProductProjection, error) {
	var out []models.ProductProjection
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindTransientDependency, "scan product", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

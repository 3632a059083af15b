package comparator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

func budgetPtr(v float64) *float64 { return &v }

func TestRank_BestIDMatchesFirstRanked(t *testing.T) {
	validUntil := time.Now().Add(24 * time.Hour)
	products := []models.ProductProjection{
		{
			ID: "a", Name: "Zapatilla A", Barcode: "X", Category: "running",
			UnitPrice: models.NewMoney(120), FinalPrice: models.NewMoney(104),
			PromotionText: "15% off", PromotionValidUntil: &validUntil,
			QuantityAvailable: 8, Status: models.StockActive,
		},
		{
			ID: "b", Name: "Zapatilla B", Barcode: "Y", Category: "casual",
			UnitPrice: models.NewMoney(120), FinalPrice: models.NewMoney(120),
			QuantityAvailable: 20, Status: models.StockActive,
		},
	}
	script := models.Script{
		Products: []models.ScriptProduct{
			{Barcode: "X", Priority: models.PriorityAlta},
			{Barcode: "Y", Priority: models.PriorityMedia},
		},
		Preferences: models.ScriptPreferences{
			BudgetMax:   budgetPtr(150),
			WantsPromos: true,
		},
	}

	c := New()
	result := c.Rank(products, script)

	require.Len(t, result.Ranked, 2)
	assert.Equal(t, result.Ranked[0].ID, result.BestID)
	assert.Equal(t, "a", result.BestID, "promo + higher priority should outrank plain option")
	assert.Contains(t, result.Reasoning, "104.00")
	assert.Contains(t, result.Reasoning, "Ahorras")
}

func TestRank_TiesBrokenByPriceThenName(t *testing.T) {
	products := []models.ProductProjection{
		{ID: "b", Name: "Beta", Barcode: "2", FinalPrice: models.NewMoney(50), UnitPrice: models.NewMoney(50), QuantityAvailable: 20, Status: models.StockActive},
		{ID: "a", Name: "Alpha", Barcode: "1", FinalPrice: models.NewMoney(50), UnitPrice: models.NewMoney(50), QuantityAvailable: 20, Status: models.StockActive},
	}
	script := models.Script{Products: []models.ScriptProduct{
		{Barcode: "1", Priority: models.PriorityMedia},
		{Barcode: "2", Priority: models.PriorityMedia},
	}}

	c := New()
	result := c.Rank(products, script)
	assert.Equal(t, "a", result.Ranked[0].ID, "equal score/price ties break by name ascending")
}

func TestRank_StockExactlyFiveScoresLowStockReason(t *testing.T) {
	products := []models.ProductProjection{
		{ID: "a", Name: "Solo", Barcode: "1", FinalPrice: models.NewMoney(10), UnitPrice: models.NewMoney(10), QuantityAvailable: 5, Status: models.StockActive},
	}
	script := models.Script{Products: []models.ScriptProduct{{Barcode: "1", Priority: models.PriorityBaja}}}

	c := New()
	result := c.Rank(products, script)
	assert.Contains(t, result.Reasoning, "Solo quedan 5")
}

func TestRank_BudgetExactlyMetScoresFullFit(t *testing.T) {
	products := []models.ProductProjection{
		{ID: "a", Name: "OnBudget", Barcode: "1", FinalPrice: models.NewMoney(100), UnitPrice: models.NewMoney(100), QuantityAvailable: 20, Status: models.StockActive},
		{ID: "b", Name: "OverBudget", Barcode: "2", FinalPrice: models.NewMoney(200), UnitPrice: models.NewMoney(200), QuantityAvailable: 20, Status: models.StockActive},
	}
	script := models.Script{
		Products:    []models.ScriptProduct{{Barcode: "1", Priority: models.PriorityMedia}, {Barcode: "2", Priority: models.PriorityMedia}},
		Preferences: models.ScriptPreferences{BudgetMax: budgetPtr(100)},
	}

	c := New()
	result := c.Rank(products, script)
	assert.Equal(t, "a", result.BestID)
}

func TestRank_EmptyProjections(t *testing.T) {
	c := New()
	result := c.Rank(nil, models.Script{})
	assert.Empty(t, result.Ranked)
	assert.Empty(t, result.BestID)
}

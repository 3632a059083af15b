// Package comparator implements Comparator: deterministic scoring of
// candidate products against a Script's stated priorities and preferences,
// producing a ranked list and a single "best" choice with reasons (§4.9).
// Modeled on the teacher's additive, clamped scoring idiom (originally
// scoring.go's alert-investigation stage criteria), reused here for
// product-ranking criteria instead.
package comparator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Comparator ranks products for a Script. It holds no state; Rank is pure
// given its inputs and the current time.
type Comparator struct {
	// now is overridable in tests; nil means time.Now.
	now func() time.Time
}

func New() *Comparator {
	return &Comparator{now: time.Now}
}

// item is one scored candidate, kept internal until final formatting.
type item struct {
	product models.ProductProjection
	score   int
	reasons []string
}

// Result is Rank's return value.
type Result struct {
	Ranked    []models.ProductProjection
	BestID    string
	Reasoning string
}

// Rank scores every projection against script, sorts descending by score
// (ties broken by lower final price, then name ascending), and returns the
// ranked list, the best id, and a short deterministic reasoning sentence.
// The best id always equals the id of the first element of Ranked (§8).
func (c *Comparator) Rank(projections []models.ProductProjection, script models.Script) Result {
	if len(projections) == 0 {
		return Result{}
	}

	productsByBarcode := make(map[string]models.ScriptProduct, len(script.Products))
	for _, p := range script.Products {
		productsByBarcode[p.Barcode] = p
	}

	items := make([]item, 0, len(projections))
	for _, p := range projections {
		sp := productsByBarcode[p.Barcode]
		score, reasons := c.score(p, sp, script.Preferences)
		items = append(items, item{product: p, score: score, reasons: reasons})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		if !items[i].product.FinalPrice.Equal(items[j].product.FinalPrice) {
			return items[i].product.FinalPrice.LessThan(items[j].product.FinalPrice)
		}
		return items[i].product.Name < items[j].product.Name
	})

	ranked := make([]models.ProductProjection, len(items))
	for i, it := range items {
		ranked[i] = it.product
	}

	return Result{
		Ranked:    ranked,
		BestID:    ranked[0].ID,
		Reasoning: c.reasoning(items),
	}
}

const (
	scorePriorityAlta  = 25
	scorePriorityMedia = 15
	scorePriorityBaja  = 5

	scoreBudgetFit     = 25
	scoreBudgetClose   = 15
	scoreBudgetOver    = 5
	scoreBudgetUnknown = 15

	scorePromoValidDated = 20
	scorePromoNoDate     = 15

	scoreStockPlenty  = 15
	scoreStockLimited = 10
	scoreStockLow     = 5
	scoreStockNone    = -20

	scoreUseCaseStrong = 15
	scoreUseCaseWeak   = 8

	scoreColorMatch = 5
	scoreSizeStated = 5
)

func (c *Comparator) score(p models.ProductProjection, sp models.ScriptProduct, prefs models.ScriptPreferences) (int, []string) {
	total := 0
	var reasons []string

	switch sp.Priority {
	case models.PriorityAlta:
		total += scorePriorityAlta
	case models.PriorityMedia:
		total += scorePriorityMedia
	case models.PriorityBaja:
		total += scorePriorityBaja
	}

	total += c.scoreBudget(p, prefs)

	promoScore, promoReason := c.scorePromotion(p)
	total += promoScore
	if promoReason != "" {
		reasons = append(reasons, promoReason)
	}

	stockScore, stockReason := c.scoreStock(p)
	total += stockScore
	if stockReason != "" {
		reasons = append(reasons, stockReason)
	}

	total += c.scoreUseCase(p, prefs)

	if prefs.PreferredColor != "" && strings.Contains(strings.ToLower(p.Name), strings.ToLower(prefs.PreferredColor)) {
		total += scoreColorMatch
		reasons = append(reasons, fmt.Sprintf("color %s", prefs.PreferredColor))
	}

	if prefs.PreferredSize != "" {
		total += scoreSizeStated
	}

	if sp.ReasonText != "" {
		reasons = append(reasons, sp.ReasonText)
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return total, reasons
}

func (c *Comparator) scoreBudget(p models.ProductProjection, prefs models.ScriptPreferences) int {
	if prefs.BudgetMax == nil {
		return scoreBudgetUnknown
	}
	budget := *prefs.BudgetMax
	price, _ := p.FinalPrice.Float64()
	switch {
	case price <= budget:
		return scoreBudgetFit
	case price <= budget*1.1:
		return scoreBudgetClose
	default:
		return scoreBudgetOver
	}
}

func (c *Comparator) scorePromotion(p models.ProductProjection) (int, string) {
	if !p.OnSale() {
		return 0, ""
	}
	if p.PromotionValid(c.nowTime()) {
		reason := p.PromotionText
		if reason == "" {
			reason = "en promoción"
		}
		return scorePromoValidDated, reason
	}
	return scorePromoNoDate, p.PromotionText
}

func (c *Comparator) scoreStock(p models.ProductProjection) (int, string) {
	switch {
	case p.QuantityAvailable > 10:
		return scoreStockPlenty, ""
	case p.QuantityAvailable >= 6:
		return scoreStockLimited, "quedan pocas unidades"
	case p.QuantityAvailable >= 1:
		return scoreStockLow, fmt.Sprintf("solo quedan %d", p.QuantityAvailable)
	default:
		return scoreStockNone, "sin stock"
	}
}

// useCasePairs maps a user's stated intended use to the category substrings
// that constitute a strong vs. weak match, per §4.9's keyword pairs.
var useCasePairs = []struct {
	triggers []string
	strong   []string
	weak     []string
}{
	{triggers: []string{"correr", "maratón", "maraton", "running"}, strong: []string{"run"}, weak: []string{"train"}},
	{triggers: []string{"gym", "gimnasio"}, strong: []string{"train", "gym"}},
	{triggers: []string{"casual", "caminar"}, strong: []string{"life", "casual"}},
}

func (c *Comparator) scoreUseCase(p models.ProductProjection, prefs models.ScriptPreferences) int {
	use := strings.ToLower(prefs.IntendedUse)
	if use == "" {
		return 0
	}
	category := strings.ToLower(p.Category)

	for _, pair := range useCasePairs {
		matched := false
		for _, trigger := range pair.triggers {
			if strings.Contains(use, trigger) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, s := range pair.strong {
			if strings.Contains(category, s) {
				return scoreUseCaseStrong
			}
		}
		for _, s := range pair.weak {
			if strings.Contains(category, s) {
				return scoreUseCaseWeak
			}
		}
	}
	return 0
}

func (c *Comparator) nowTime() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// reasoning builds the short deterministic sentence naming the best
// product, both prices, up to three reasons, a savings comparison against
// the second-best, and a low-stock warning when applicable.
func (c *Comparator) reasoning(items []item) string {
	if len(items) == 0 {
		return ""
	}
	best := items[0]
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s por %s", best.product.Name, money(best.product.FinalPrice))
	if best.product.OnSale() {
		fmt.Fprintf(&sb, " (antes %s)", money(best.product.UnitPrice))
	}

	reasons := best.reasons
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	if len(reasons) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(reasons, ", "))
	}

	if len(items) > 1 {
		second := items[1]
		diff := second.product.FinalPrice.Sub(best.product.FinalPrice)
		if diff.IsPositive() {
			fmt.Fprintf(&sb, ". Ahorras %s frente a %s", money(diff), second.product.Name)
		}
	}

	if best.product.QuantityAvailable > 0 && best.product.QuantityAvailable <= 5 {
		fmt.Fprintf(&sb, ". Solo quedan %d unidades", best.product.QuantityAvailable)
	}

	return sb.String()
}

func money(m models.Money) string {
	return "$" + m.StringFixed(2)
}

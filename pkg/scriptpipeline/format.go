package scriptpipeline

import (
	"fmt"
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// lowStockThreshold is the quantity at/below which the bullet listing
// warns about dwindling stock (§4.8 step 5).
const lowStockThreshold = 5

// renderBullets is the opaque deterministic bullet-list renderer named in
// §9's Open Question ("treat as an opaque deterministic renderer, not a
// contract"): it is not asserted against any frontend Markdown contract,
// only that it deterministically includes name, prices, discount, stock
// warning, and a best-marker.
func renderBullets(ranked []models.ProductProjection, bestID string) string {
	var sb strings.Builder
	for i, p := range ranked {
		if i > 0 {
			sb.WriteString("\n")
		}
		marker := "-"
		if p.ID == bestID {
			marker = "★"
		}
		sb.WriteString(marker)
		sb.WriteString(" ")
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		if p.OnSale() {
			fmt.Fprintf(&sb, "~~$%s~~ $%s", p.UnitPrice.StringFixed(2), p.FinalPrice.StringFixed(2))
			if p.DiscountPercent != nil {
				fmt.Fprintf(&sb, " (-%s%%)", p.DiscountPercent.StringFixed(0))
			}
		} else {
			fmt.Fprintf(&sb, "$%s", p.FinalPrice.StringFixed(2))
		}
		if p.QuantityAvailable > 0 && p.QuantityAvailable <= lowStockThreshold {
			fmt.Fprintf(&sb, " — quedan %d", p.QuantityAvailable)
		}
	}
	return sb.String()
}

// closingPrompt returns a yes/no confirmation prompt when primaryIntent
// permits one (buy/recommend), else empty.
func closingPrompt(intent models.PrimaryIntent) string {
	switch intent {
	case models.PrimaryIntentBuy, models.PrimaryIntentRecommend:
		return "¿Quieres que lo apartemos? (sí/no)"
	default:
		return ""
	}
}

// deterministicPersuasion is the fallback persuasive message used when the
// LLM call fails (§4.8 step 4): name, final price, discount if any, and a
// closing yes/no question.
func deterministicPersuasion(best models.ProductProjection, intent models.PrimaryIntent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Te recomiendo %s por $%s", best.Name, best.FinalPrice.StringFixed(2))
	if best.OnSale() && best.DiscountPercent != nil {
		fmt.Fprintf(&sb, " (%s%% de descuento)", best.DiscountPercent.StringFixed(0))
	}
	sb.WriteString(".")
	if prompt := closingPrompt(intent); prompt != "" {
		sb.WriteString(" ")
		sb.WriteString(prompt)
	}
	return sb.String()
}

// buildFullMessage assembles the persuasive lead-in plus the bullet listing
// plus the closing prompt into the full agent message (§4.8 step 5).
func buildFullMessage(lead string, ranked []models.ProductProjection, bestID string, intent models.PrimaryIntent) string {
	var sb strings.Builder
	sb.WriteString(lead)
	sb.WriteString("\n\n")
	sb.WriteString(renderBullets(ranked, bestID))
	if prompt := closingPrompt(intent); prompt != "" && !strings.HasSuffix(lead, prompt) {
		sb.WriteString("\n\n")
		sb.WriteString(prompt)
	}
	return sb.String()
}

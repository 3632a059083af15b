package styles

import (
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// StopPhrases short-circuits a turn with a farewell before any
// classification runs (§4.5: "Stop-intent detection runs before any
// classification"). Matching is case-insensitive substring against the
// trimmed, lowercased utterance.
var StopPhrases = []string{
	"no gracias",
	"chao",
	"adiós",
	"adios",
	"mejor no",
	"olvídalo",
	"olvidalo",
	"no quiero nada",
	"ya no",
	"dejalo",
	"déjalo",
}

// IsStopIntent reports whether the utterance trips the stop-intent
// short-circuit.
func IsStopIntent(utterance string) bool {
	u := strings.ToLower(strings.TrimSpace(utterance))
	for _, phrase := range StopPhrases {
		if strings.Contains(u, phrase) {
			return true
		}
	}
	return false
}

// IntentKeywords scores each intent label by counting keyword occurrences,
// per spec.md §4.5's deterministic fallback. This is intentionally a small,
// representative list per DESIGN.md's Open Question decision: extending it
// changes keyword-classifier test expectations, so it is versioned rather
// than grown freely.
var IntentKeywords = map[models.Intent][]string{
	models.IntentSearch: {
		"busco", "buscando", "tienen", "hay", "quiero ver", "muéstrame",
		"muestrame", "encuentra", "necesito unos", "necesito unas",
	},
	models.IntentPersuasion: {
		"cuál es mejor", "cual es mejor", "recomiendas", "me conviene",
		"vale la pena", "qué opinas", "que opinas", "diferencia entre",
	},
	models.IntentCheckout: {
		"comprar", "lo llevo", "lo quiero comprar", "hacer el pedido",
		"finalizar compra", "pagar", "checkout", "confirmar pedido",
	},
	models.IntentInfo: {
		"horario", "horarios", "devoluciones", "envío", "envio", "garantía",
		"garantia", "ubicación", "ubicacion", "dónde quedan", "donde quedan",
		"métodos de pago", "metodos de pago",
	},
	models.IntentRecommendation: {
		"recomiéndame", "recomiendame", "qué me recomiendas",
		"que me recomiendas", "sugerencia", "sugiéreme", "sughhhiereme",
		"algo para", "opciones para",
	},
}

// FAQTopicWords is the fixed topic-word list used by the Retriever to
// detect FAQ-shaped "info" utterances (§4.6.1).
var FAQTopicWords = []string{
	"horario", "horarios", "devoluciones", "devolución", "devolucion",
	"envío", "envio", "pago", "pagos", "garantía", "garantia",
	"ubicación", "ubicacion", "sucursal", "local", "dirección", "direccion",
}

// AffirmativeWords and NegativeWords are the fixed yes/no token sets used
// throughout the checkout state machine (§4.6.3).
var AffirmativeWords = map[string]bool{
	"si": true, "sí": true, "ok": true, "okay": true, "dale": true,
	"claro": true, "de una": true, "va": true, "yes": true, "bueno": true,
}

var NegativeWords = map[string]bool{
	"no": true, "otra": true, "otro": true, "diferente": true,
	"no gracias": true, "paso": true, "nel": true, "nop": true,
}

// YesNo classifies a trimmed, lowercased reply as affirmative, negative, or
// neither (callers re-ask the confirm question on "neither").
func YesNo(text string) (affirmative, negative bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	return AffirmativeWords[t], NegativeWords[t]
}

// CheckoutKeywordMatched reports whether any checkout-intent keyword occurs
// in lowerUtterance, used by the tie-break rule in §4.5's keyword fallback ("ties favor persuasion unless
// prior search results are present, then checkout if any checkout-keyword
// matched").
func CheckoutKeywordMatched(lowerUtterance string) bool {
	for _, kw := range IntentKeywords[models.IntentCheckout] {
		if strings.Contains(lowerUtterance, kw) {
			return true
		}
	}
	return false
}

// StyleMarkers is the fixed word/phrase list the keyword-fallback style
// detector scores against, one per non-neutral style (§4.5's style set).
// Neutral has no marker list: it is the default when no other style scores.
var StyleMarkers = map[models.Style][]string{
	models.StyleCuencano: {
		"pes", "ñaño", "ñañito", "bacán", "bacan", "chuta", "achachay",
		"deme", "mireque", "ratito",
	},
	models.StyleJuvenil: {
		"bro", "parce", "oe", "full", "nea", "chevere", "chévere", "xd",
		"jaja", "dale pues", "porfa",
	},
	models.StyleFormal: {
		"usted", "ustedes", "por favor", "cordialmente", "estimado",
		"estimada", "quisiera", "agradecería", "agradeceria",
	},
}

// ScoreStyle counts StyleMarkers occurrences across utterances (already
// expected lowercased) and returns the highest-scoring style and its
// matched samples. An all-zero score resolves to neutral; a tie between
// styles goes to the first of cuencano, juvenil, formal.
func ScoreStyle(utterances []string) (style models.Style, score int, samples []string) {
	best := models.StyleNeutral
	bestScore := 0
	var bestSamples []string

	for _, s := range []models.Style{models.StyleCuencano, models.StyleJuvenil, models.StyleFormal} {
		count := 0
		var matched []string
		for _, u := range utterances {
			lower := strings.ToLower(u)
			for _, marker := range StyleMarkers[s] {
				if strings.Contains(lower, marker) {
					count++
					matched = append(matched, marker)
				}
			}
		}
		if count > bestScore {
			bestScore = count
			best = s
			bestSamples = matched
		}
	}
	return best, bestScore, bestSamples
}

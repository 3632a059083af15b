// Package styles holds the per-communication-style prose templates used by
// every user-facing surface in the COE (§7: "every error surface is
// style-aware"; §4.5: the four styles). No teacher file matches this
// one-for-one; it follows the small-registry-with-constructor idiom used
// throughout pkg/config in the teacher repo.
package styles

import (
	"fmt"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Kind names one template slot. Each of the four styles defines a string for
// every Kind; Render falls back to Neutral if a style is unknown.
type Kind string

const (
	KindFarewell            Kind = "farewell"
	KindSearchGreeting       Kind = "search_greeting"
	KindSearchClarify        Kind = "search_clarify"
	KindSearchError          Kind = "search_error"
	KindFAQLeadIn            Kind = "faq_lead_in"
	KindFAQMiss              Kind = "faq_miss"
	KindSalesApology         Kind = "sales_apology"
	KindCheckoutConfirmAsk   Kind = "checkout_confirm_ask"
	KindCheckoutAddressAsk   Kind = "checkout_address_ask"
	KindCheckoutNoMoreAlts   Kind = "checkout_no_more_alts"
	KindCheckoutOutOfStock   Kind = "checkout_out_of_stock"
	KindCheckoutRetry        Kind = "checkout_retry"
	KindCheckoutOrderDone    Kind = "checkout_order_done"
	KindTransientApology     Kind = "transient_apology"
	KindGenericApology       Kind = "generic_apology"
)

// templates[style][kind] = prose, with %s placeholders filled by Render.
var templates = map[models.Style]map[Kind]string{
	models.StyleCuencano: {
		KindFarewell:           "Ayayay, ya se va pes. ¡Que le vaya bonito, vuelva prontito!",
		KindSearchGreeting:     "Ayayay, mireque encontré estos productos para usted:",
		KindSearchClarify:      "Ayayay, no le entendí bien qué busca, ¿me puede decir con más detalle?",
		KindSearchError:        "Ayayay, se me dañó la búsqueda, intentemos de nuevo un ratito.",
		KindFAQLeadIn:          "Ayayay, déjeme contarle:",
		KindFAQMiss:            "Ayayay, no encontré nada sobre eso, pero le paso con alguien que le ayuda.",
		KindSalesApology:       "Ayayay, se me demoró la respuesta, deme un chance y lo intento de nuevo.",
		KindCheckoutConfirmAsk: "Le quedó %s por %s, ¿lo llevamos pes? (sí/no)",
		KindCheckoutAddressAsk: "Bacán, deme la talla y la dirección para el envío.",
		KindCheckoutNoMoreAlts: "Ayayay, ya no me quedan más opciones parecidas, ¿buscamos otra cosita?",
		KindCheckoutOutOfStock: "Ayayay, ya no hay de eso, escoja otro pes.",
		KindCheckoutRetry:      "Ayayay, algo falló, intentemos de nuevo.",
		KindCheckoutOrderDone:  "¡Listo pes! Su pedido %s quedó confirmado por %s.",
		KindTransientApology:   "Ayayay, se cayó el sistema un toque, intente de nuevo porfa.",
		KindGenericApology:     "Ayayay, se me enredó algo por aquí, disculpe la demora.",
	},
	models.StyleJuvenil: {
		KindFarewell:           "Ok ok, nos vemos, ¡cuídate mucho! 👋",
		KindSearchGreeting:     "Mira lo que encontré, está bueno:",
		KindSearchClarify:      "Oye no te entendí bien, ¿qué andas buscando?",
		KindSearchError:        "Uy se trabó la búsqueda, dame un toque y lo intento de nuevo.",
		KindFAQLeadIn:          "Te cuento:",
		KindFAQMiss:            "No hallé nada sobre eso, te paso con alguien que sí sabe.",
		KindSalesApology:       "Se me hizo lento esto, dame un segundo y seguimos.",
		KindCheckoutConfirmAsk: "Te queda %s por %s, ¿vamos con eso? (sí/no)",
		KindCheckoutAddressAsk: "Dale, pásame la talla y la dirección.",
		KindCheckoutNoMoreAlts: "Ya no tengo más opciones parecidas, ¿buscamos otra cosa?",
		KindCheckoutOutOfStock: "Eso ya no hay, escoge otro porfa.",
		KindCheckoutRetry:      "Algo falló, intentemos de nuevo.",
		KindCheckoutOrderDone:  "¡Listo! Tu pedido %s quedó confirmado por %s.",
		KindTransientApology:   "Se cayó el sistema un toque, intenta de nuevo.",
		KindGenericApology:     "Se me enredó algo, disculpa la demora.",
	},
	models.StyleFormal: {
		KindFarewell:           "Entendido, agradecemos su visita. Que tenga un excelente día.",
		KindSearchGreeting:     "Encontré estos productos:",
		KindSearchClarify:      "¿Podría indicarme con más detalle qué producto busca?",
		KindSearchError:        "Ocurrió un inconveniente con la búsqueda; permítame intentarlo nuevamente.",
		KindFAQLeadIn:          "Con gusto le informo:",
		KindFAQMiss:            "No encontré información al respecto; le derivo con un asesor.",
		KindSalesApology:       "La respuesta está tardando más de lo esperado; permítame un momento.",
		KindCheckoutConfirmAsk: "Su selección es %s por %s, ¿desea confirmar la compra? (sí/no)",
		KindCheckoutAddressAsk: "Por favor indíqueme la talla y la dirección de envío.",
		KindCheckoutNoMoreAlts: "No cuento con más alternativas similares; ¿desea iniciar una nueva búsqueda?",
		KindCheckoutOutOfStock: "Ese producto ya no cuenta con existencias; por favor seleccione otro.",
		KindCheckoutRetry:      "Ocurrió un error; por favor intentemos nuevamente.",
		KindCheckoutOrderDone:  "Su pedido %s ha sido confirmado por un total de %s.",
		KindTransientApology:   "El sistema presenta una demora temporal; por favor intente nuevamente.",
		KindGenericApology:     "Ocurrió un inconveniente inesperado; lamentamos la demora.",
	},
	models.StyleNeutral: {
		KindFarewell:           "Entendido, ¡hasta luego!",
		KindSearchGreeting:     "Encontré estos productos:",
		KindSearchClarify:      "No entendí bien qué buscas, ¿me das más detalles?",
		KindSearchError:        "Hubo un problema con la búsqueda, intentemos de nuevo.",
		KindFAQLeadIn:          "Te cuento:",
		KindFAQMiss:            "No encontré información sobre eso; te paso con un asesor.",
		KindSalesApology:       "La respuesta está demorando, dame un momento.",
		KindCheckoutConfirmAsk: "Tu selección es %s por %s, ¿confirmamos la compra? (sí/no)",
		KindCheckoutAddressAsk: "Indícame la talla y la dirección de envío.",
		KindCheckoutNoMoreAlts: "No tengo más alternativas similares, ¿buscamos algo distinto?",
		KindCheckoutOutOfStock: "Ese producto ya no tiene existencias, elige otro por favor.",
		KindCheckoutRetry:      "Ocurrió un error, intentemos de nuevo.",
		KindCheckoutOrderDone:  "Tu pedido %s quedó confirmado por %s.",
		KindTransientApology:   "El sistema tuvo una demora, intenta de nuevo.",
		KindGenericApology:     "Ocurrió un problema inesperado, disculpa la demora.",
	},
}

// Render returns the template text for kind under style, %-formatted with
// args. Unknown styles fall back to Neutral.
func Render(style models.Style, kind Kind, args ...any) string {
	set, ok := templates[style]
	if !ok {
		set = templates[models.StyleNeutral]
	}
	tmpl, ok := set[kind]
	if !ok {
		tmpl = templates[models.StyleNeutral][kind]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

package models

// Priority is the user-stated urgency/priority of a candidate product in a
// Script, used by the Comparator's scoring.
type Priority string

const (
	PriorityAlta  Priority = "alta"
	PriorityMedia Priority = "media"
	PriorityBaja  Priority = "baja"
)

// InputKind is how the original utterance reached the "input understanding"
// service that produced this Script.
type InputKind string

const (
	InputText  InputKind = "text"
	InputVoice InputKind = "voice"
	InputImage InputKind = "image"
	InputMixed InputKind = "mixed"
)

// PrimaryIntent is the script-level intent of the shopper, distinct from the
// per-turn Classifier Intent.
type PrimaryIntent string

const (
	PrimaryIntentBuy       PrimaryIntent = "buy"
	PrimaryIntentCompare   PrimaryIntent = "compare"
	PrimaryIntentInform    PrimaryIntent = "inform"
	PrimaryIntentRecommend PrimaryIntent = "recommend"
)

// ScriptProduct is one barcode-identified candidate in a Script.
type ScriptProduct struct {
	Barcode      string   `json:"barcode"`
	DetectedName string   `json:"detected_name"`
	Brand        string   `json:"brand,omitempty"`
	Category     string   `json:"category,omitempty"`
	Priority     Priority `json:"priority"`
	ReasonText   string   `json:"reason_text,omitempty"`
}

// ScriptPreferences carries the shopper's stated preferences.
type ScriptPreferences struct {
	Style             Style    `json:"style"`
	IntendedUse       string   `json:"intended_use,omitempty"`
	ActivityLevel     string   `json:"activity_level,omitempty"`
	PreferredSize     string   `json:"preferred_size,omitempty"`
	PreferredColor    string   `json:"preferred_color,omitempty"`
	BudgetMax         *float64 `json:"budget_max,omitempty"`
	WantsPromos       bool     `json:"wants_promos"`
	Urgency           Priority `json:"urgency,omitempty"`
	ImportantFeatures []string `json:"important_features,omitempty"`
}

// ScriptContext carries metadata about how the script was produced and what
// the upstream understanding service believes the shopper wants.
type ScriptContext struct {
	InputKind         InputKind     `json:"input_kind"`
	ExplicitProduct   string        `json:"explicit_product,omitempty"`
	NeedsRecommend    bool          `json:"needs_recommendation,omitempty"`
	PrimaryIntent     PrimaryIntent `json:"primary_intent"`
	ExtraConstraints  []string      `json:"extra_constraints,omitempty"`
}

// Script is the externally supplied structured product brief that drives
// ScriptPipeline.
type Script struct {
	SessionID    string            `json:"session_id"`
	Products     []ScriptProduct   `json:"products"`
	Preferences  ScriptPreferences `json:"preferences"`
	Context      ScriptContext     `json:"context"`
	OriginalText string            `json:"original_text"`
	Summary      string            `json:"summary,omitempty"`
	Confidence   float64           `json:"confidence"`
}

// Barcodes extracts the candidate barcodes in input order.
func (s Script) Barcodes() []string {
	out := make([]string, 0, len(s.Products))
	for _, p := range s.Products {
		if p.Barcode != "" {
			out = append(out, p.Barcode)
		}
	}
	return out
}

// NextStep is the closed set of ScriptPipeline/continuation outcomes.
type NextStep string

const (
	NextStepConfirmBuy        NextStep = "confirm_buy"
	NextStepNeedShipping      NextStep = "need_shipping"
	NextStepMoreInfo          NextStep = "more_info"
	NextStepRetry             NextStep = "retry"
	NextStepShowAlternatives  NextStep = "show_alternatives"
	NextStepOrderCompleted    NextStep = "order_completed"
)

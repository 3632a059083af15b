// Package models defines the plain data structures shared across the COE:
// conversation sessions, script-driven sessions, catalog projections, orders
// and transcript records. None of these embed an ORM entity — persistence
// adapters (pkg/session, pkg/transcript, pkg/catalog, pkg/orderbook) convert
// to/from these shapes at their boundary, so a model never carries a
// storage-layer reference to another model (§9: "cyclic references...broken
// by id-only references").
package models

import "time"

// Intent is the closed set of classifier outputs routed to agents.
type Intent string

const (
	IntentSearch         Intent = "search"
	IntentPersuasion     Intent = "persuasion"
	IntentCheckout       Intent = "checkout"
	IntentInfo           Intent = "info"
	IntentRecommendation Intent = "recommendation"
)

// Style is the closed set of communication registers used to template every
// user-facing string.
type Style string

const (
	StyleCuencano Style = "cuencano"
	StyleJuvenil  Style = "juvenil"
	StyleFormal   Style = "formal"
	StyleNeutral  Style = "neutral"
)

// Role identifies the speaker of a conversation turn or transcript line.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// CheckoutStage is the position in the conversational checkout state machine.
type CheckoutStage string

const (
	CheckoutStageConfirm  CheckoutStage = "confirm"
	CheckoutStageAddress  CheckoutStage = "address"
	CheckoutStagePayment  CheckoutStage = "payment"
	CheckoutStageComplete CheckoutStage = "complete"
)

// ConversationStage tracks the higher-level phase of the dialogue.
type ConversationStage string

const (
	StageAwaitingConfirm   ConversationStage = "awaiting_confirm"
	StageAwaitingShipping  ConversationStage = "awaiting_shipping"
	StageReadyToCheckout   ConversationStage = "ready_to_checkout"
	StageSeekingAlternate  ConversationStage = "seeking_alternative"
)

// HistoryTurn is one entry in a Session's capped conversation ring.
type HistoryTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// CartLine is one product line of a staged cart.
type CartLine struct {
	ProductID string  `json:"product_id"`
	UnitPrice Money   `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Session is the chat conversational state, keyed by an externally supplied
// session id. Neither Session nor the Orchestrator locks it: concurrent
// turns for the same session id are not serialized inside this module.
type Session struct {
	SessionID         string             `json:"session_id"`
	UserID            string             `json:"user_id,omitempty"`
	RecentUtterance   string             `json:"recent_utterance,omitempty"`
	LastIntent        Intent             `json:"last_intent,omitempty"`
	Style             Style              `json:"style,omitempty"`
	History           []HistoryTurn      `json:"history"`
	LastSearchResults []ProductProjection `json:"last_search_results,omitempty"`
	SelectedProductIDs []string          `json:"selected_product_ids,omitempty"`
	Cart              []CartLine         `json:"cart"`
	CartTotal         Money              `json:"cart_total"`
	CheckoutStage     CheckoutStage      `json:"checkout_stage,omitempty"`
	ShippingAddress   string             `json:"shipping_address,omitempty"`
	ConversationStage ConversationStage  `json:"conversation_stage,omitempty"`
	Slots             map[string]string  `json:"slots,omitempty"`
	UnansweredCount   int                `json:"unanswered_count"`
	CreatedAt         time.Time          `json:"created_at"`
}

// HistoryCap is the maximum number of turns retained in Session.History.
const HistoryCap = 20

// PushHistory appends a turn, evicting the oldest entry once HistoryCap is
// exceeded (a capped ring, not an unbounded log — that is TranscriptStore's
// job).
func (s *Session) PushHistory(role Role, text string) {
	s.History = append(s.History, HistoryTurn{Role: role, Text: text})
	if len(s.History) > HistoryCap {
		s.History = s.History[len(s.History)-HistoryCap:]
	}
}

// RecentUserUtterances returns up to n most recent user-role history
// entries, oldest first, for style detection.
func (s *Session) RecentUserUtterances(n int) []string {
	var out []string
	for i := len(s.History) - 1; i >= 0 && len(out) < n; i-- {
		if s.History[i].Role == RoleUser {
			out = append([]string{s.History[i].Text}, out...)
		}
	}
	return out
}

// RecalculateCartTotal recomputes CartTotal from Cart lines, enforcing the
// invariant that cart total equals the sum of unit_price*quantity.
func (s *Session) RecalculateCartTotal() {
	total := ZeroMoney()
	for _, line := range s.Cart {
		total = total.Add(line.UnitPrice.MulInt(line.Quantity))
	}
	s.CartTotal = total
}

// ClearCart empties the cart and resets its total, used on order completion
// or cancellation.
func (s *Session) ClearCart() {
	s.Cart = nil
	s.CartTotal = ZeroMoney()
}

// ScriptSession is the alternate session shape created by ScriptPipeline. It
// shares SessionStore's TTL semantics under a disjoint key namespace
// (guion_session:{id}).
type ScriptSession struct {
	SessionID     string              `json:"session_id"`
	Ranked        []ProductProjection `json:"ranked"`
	ChosenIndex   int                 `json:"chosen_index"`
	Style         Style               `json:"style,omitempty"`
	Approved      bool                `json:"approved"`
	ShippingInfo  *ShippingInfo       `json:"shipping_info,omitempty"`
	OrderID       string              `json:"order_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ShippingInfo is the parsed size + address captured during checkout.
type ShippingInfo struct {
	Size    int    `json:"size"`
	Address string `json:"address"`
}

// Current returns the currently offered ranked product, or false if the
// pointer has run off the end of the list.
func (s *ScriptSession) Current() (ProductProjection, bool) {
	if s.ChosenIndex < 0 || s.ChosenIndex >= len(s.Ranked) {
		return ProductProjection{}, false
	}
	return s.Ranked[s.ChosenIndex], true
}

// Advance moves the chosen pointer to the next ranked alternative. Returns
// false when no alternative remains.
func (s *ScriptSession) Advance() bool {
	s.ChosenIndex++
	return s.ChosenIndex < len(s.Ranked)
}

package api

import (
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// ChatResponse is the result of the chat query (§6).
type ChatResponse struct {
	Answer   string `json:"answer"`
	Query    string `json:"query"`
	Error    string `json:"error,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// ChatHistoryResponse is the result of the chat_history query.
type ChatHistoryResponse struct {
	Messages []models.TranscriptRecord `json:"messages"`
	Total    int                       `json:"total"`
	HasMore  bool                      `json:"has_more"`
}

// ConversationsResponse is the result of the conversations query.
type ConversationsResponse struct {
	Conversations []models.ConversationSummary `json:"conversations"`
}

// OrderQueryResponse is the result of the order(id) query. Order is nil
// both when the order truly doesn't exist and when the caller may not see
// it (§6: "non-owner and non-admin → null") — the two cases are
// deliberately indistinguishable to the caller.
type OrderQueryResponse struct {
	Order *models.Order `json:"order"`
}

// ListProductsResponse is the result of the list_products query.
type ListProductsResponse struct {
	Products []models.ProductProjection `json:"products"`
}

// ProcessScriptResponse is the result of the process_script mutation.
type ProcessScriptResponse struct {
	OK        bool                       `json:"ok"`
	Message   string                     `json:"message"`
	Products  []models.ProductProjection `json:"products"`
	BestID    string                     `json:"best_id"`
	Reasoning string                     `json:"reasoning"`
	NextStep  models.NextStep            `json:"next_step"`
	AudioURL  string                     `json:"audio_url,omitempty"`
}

// ContinueConversationResponse is the result of the continue_conversation
// mutation.
type ContinueConversationResponse struct {
	OK          bool            `json:"ok"`
	Message     string          `json:"message"`
	BestID      string          `json:"best_id,omitempty"`
	NextStep    models.NextStep `json:"next_step"`
	OrderID     string          `json:"order_id,omitempty"`
	OrderNumber string          `json:"order_number,omitempty"`
	OrderTotal  string          `json:"order_total,omitempty"`
	OrderStatus string          `json:"order_status,omitempty"`
	AudioURL    string          `json:"audio_url,omitempty"`
}

// CreateOrderResponse is the result of the create_order mutation.
type CreateOrderResponse struct {
	OK      bool          `json:"ok"`
	Order   *models.Order `json:"order,omitempty"`
	Message string        `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// CancelOrderResponse is the result of the cancel_order mutation.
type CancelOrderResponse struct {
	OK      bool          `json:"ok"`
	Order   *models.Order `json:"order,omitempty"`
	Message string        `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// LoginResponse is the body of the POST /api/v1/login response.
type LoginResponse struct {
	Token string `json:"token"`
}

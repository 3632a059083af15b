package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// processScriptHandler handles POST /graphql/process_script (§4.8).
func (s *Server) processScriptHandler(c *echo.Context) error {
	var script models.Script
	if err := c.Bind(&script); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed script")
	}

	result, err := s.pipeline.ProcessScript(c.Request().Context(), script)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, &ProcessScriptResponse{
		OK:        true,
		Message:   result.Message,
		Products:  result.Ranked,
		BestID:    result.BestID,
		Reasoning: result.Reasoning,
		// A freshly processed script always opens on the confirm/deny step
		// (ScriptSession starts with Approved=false at index 0).
		NextStep: models.NextStepConfirmBuy,
		AudioURL: result.AudioURL,
	})
}

// continueConversationHandler handles POST /graphql/continue_conversation.
func (s *Server) continueConversationHandler(c *echo.Context) error {
	var req ContinueConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	if req.SessionID == "" || req.UserText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and user_text are required")
	}

	result, err := s.pipeline.ContinueConversation(c.Request().Context(), req.SessionID, req.UserText)
	if err != nil {
		return mapError(err)
	}

	resp := &ContinueConversationResponse{
		OK:       true,
		Message:  result.Reply,
		NextStep: result.NextStep,
		AudioURL: result.AudioURL,
	}
	if result.Order != nil {
		resp.OrderID = result.Order.ID
		resp.OrderNumber = models.OrderNumber(result.Order.ID)
		resp.OrderTotal = result.Order.Total.StringFixed(2)
		resp.OrderStatus = string(result.Order.Status)
	}
	return c.JSON(http.StatusOK, resp)
}

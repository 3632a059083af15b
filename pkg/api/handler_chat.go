package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// chatHandler handles POST /graphql/chat (requires auth).
func (s *Server) chatHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)

	// 1. Bind and validate the request body.
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed chat request")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	// 2. Run one full orchestrator turn.
	result := s.orchestrator.Process(c.Request().Context(), req.Query, req.SessionID, principal.UserID)

	resp := &ChatResponse{Answer: result.ReplyText, Query: req.Query}
	if kind, ok := result.Metadata["error"].(string); ok {
		resp.Error = kind
	}

	// 3. Best-effort TTS; a synthesis failure never fails the chat turn.
	if audioURL, err := s.tts.Synthesize(c.Request().Context(), result.ReplyText, string(result.Style)); err == nil {
		resp.AudioURL = audioURL
	} else {
		s.logger.Warn("api: chat tts synthesis failed", "error", err)
	}

	return c.JSON(http.StatusOK, resp)
}

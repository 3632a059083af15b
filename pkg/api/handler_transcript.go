package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

const defaultTranscriptPageSize = 50

// crossUserBlocked reports whether any record in recs belongs to a user
// other than the requester, unless the requester is an admin (§4.2: "store
// rejects cross-user reads when a requesting_user is provided and does not
// match" — enforced here at the transport layer since TranscriptStore
// itself is not user-scoped).
func crossUserBlocked(principal Principal, recs []models.TranscriptRecord) bool {
	if principal.IsAdmin() {
		return false
	}
	for _, rec := range recs {
		if rec.UserID != "" && rec.UserID != principal.UserID {
			return true
		}
	}
	return false
}

// chatHistoryHandler handles GET /graphql/chat_history (requires auth;
// cross-user reads return an empty result rather than an error).
func (s *Server) chatHistoryHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	limit := queryInt(c, "limit", defaultTranscriptPageSize)
	offset := queryInt(c, "offset", 0)

	records, total, err := s.transcripts.GetBySession(c.Request().Context(), sessionID, limit, offset)
	if err != nil {
		return mapError(err)
	}
	if crossUserBlocked(principal, records) {
		return c.JSON(http.StatusOK, &ChatHistoryResponse{Messages: []models.TranscriptRecord{}})
	}

	return c.JSON(http.StatusOK, &ChatHistoryResponse{
		Messages: records,
		Total:    total,
		HasMore:  offset+len(records) < total,
	})
}

// conversationsHandler handles GET /graphql/conversations (auth required).
func (s *Server) conversationsHandler(c *echo.Context) error {
	limit := queryInt(c, "limit", defaultTranscriptPageSize)

	summaries, err := s.transcripts.ListConversations(c.Request().Context(), limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, &ConversationsResponse{Conversations: summaries})
}

// listTranscriptsHandler handles GET /api/v1/transcripts, dispatching on
// whichever of session_id/user_id/order_id is supplied, mirroring §4.2's
// GetBySession/GetByUser/GetByOrder contract as a single REST surface.
func (s *Server) listTranscriptsHandler(c *echo.Context) error {
	principal, _ := principalFrom(c)
	limit := queryInt(c, "limit", defaultTranscriptPageSize)
	offset := queryInt(c, "offset", 0)

	switch {
	case c.QueryParam("order_id") != "":
		records, err := s.transcripts.GetByOrder(c.Request().Context(), c.QueryParam("order_id"))
		if err != nil {
			return mapError(err)
		}
		if crossUserBlocked(principal, records) {
			return c.JSON(http.StatusOK, &ChatHistoryResponse{Messages: []models.TranscriptRecord{}})
		}
		return c.JSON(http.StatusOK, &ChatHistoryResponse{Messages: records, Total: len(records)})

	case c.QueryParam("user_id") != "":
		userID := c.QueryParam("user_id")
		if !principal.IsAdmin() && userID != principal.UserID {
			return c.JSON(http.StatusOK, &ChatHistoryResponse{Messages: []models.TranscriptRecord{}})
		}
		records, total, err := s.transcripts.GetByUser(c.Request().Context(), userID, limit, offset)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(http.StatusOK, &ChatHistoryResponse{
			Messages: records, Total: total, HasMore: offset+len(records) < total,
		})

	case c.QueryParam("session_id") != "":
		records, total, err := s.transcripts.GetBySession(c.Request().Context(), c.QueryParam("session_id"), limit, offset)
		if err != nil {
			return mapError(err)
		}
		if crossUserBlocked(principal, records) {
			return c.JSON(http.StatusOK, &ChatHistoryResponse{Messages: []models.TranscriptRecord{}})
		}
		return c.JSON(http.StatusOK, &ChatHistoryResponse{
			Messages: records, Total: total, HasMore: offset+len(records) < total,
		})

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "one of session_id, user_id, or order_id is required")
	}
}

// updateTranscriptHandler handles PATCH /api/v1/transcripts/:id.
func (s *Server) updateTranscriptHandler(c *echo.Context) error {
	id := c.Param("id")
	var req UpdateTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed transcript update")
	}
	if err := s.transcripts.Update(c.Request().Context(), id, req.Body, req.Metadata); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// deleteTranscriptHandler handles DELETE /api/v1/transcripts/:id.
func (s *Server) deleteTranscriptHandler(c *echo.Context) error {
	if err := s.transcripts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// archiveTranscriptHandler handles POST /api/v1/transcripts/:id/archive.
func (s *Server) archiveTranscriptHandler(c *echo.Context) error {
	if err := s.transcripts.Archive(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

func TestCrossUserBlocked_AdminNeverBlocked(t *testing.T) {
	recs := []models.TranscriptRecord{{UserID: "someone-else"}}
	assert.False(t, crossUserBlocked(Principal{UserID: "admin-1", Role: RoleAdmin}, recs))
}

func TestCrossUserBlocked_BlocksMismatchedOwner(t *testing.T) {
	recs := []models.TranscriptRecord{{UserID: "owner-1"}}
	assert.True(t, crossUserBlocked(Principal{UserID: "someone-else", Role: RoleCustomer}, recs))
}

func TestCrossUserBlocked_AllowsOwnRecords(t *testing.T) {
	recs := []models.TranscriptRecord{{UserID: "u1"}, {UserID: "u1"}}
	assert.False(t, crossUserBlocked(Principal{UserID: "u1", Role: RoleCustomer}, recs))
}

func TestChatHistoryHandler_RequiresSessionID(t *testing.T) {
	s := &Server{transcripts: &fakeTranscriptStore{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/chat_history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.chatHistoryHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestChatHistoryHandler_ReturnsEmptyForCrossUserSession(t *testing.T) {
	store := &fakeTranscriptStore{bySession: []models.TranscriptRecord{{UserID: "owner-1", Body: "hi"}}}
	s := &Server{transcripts: store}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/chat_history?session_id=s1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "someone-else", Role: RoleCustomer})

	require.NoError(t, s.chatHistoryHandler(c))
	var resp ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestChatHistoryHandler_ReturnsOwnMessages(t *testing.T) {
	store := &fakeTranscriptStore{bySession: []models.TranscriptRecord{{UserID: "u1", Body: "hi"}}}
	s := &Server{transcripts: store}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql/chat_history?session_id=s1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "u1", Role: RoleCustomer})

	require.NoError(t, s.chatHistoryHandler(c))
	var resp ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "hi", resp.Messages[0].Body)
}

func TestListTranscriptsHandler_RequiresAFilterParam(t *testing.T) {
	s := &Server{transcripts: &fakeTranscriptStore{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.listTranscriptsHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestListTranscriptsHandler_BlocksCrossUserLookupByUserID(t *testing.T) {
	s := &Server{transcripts: &fakeTranscriptStore{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts?user_id=someone-else", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "u1", Role: RoleCustomer})

	require.NoError(t, s.listTranscriptsHandler(c))
	var resp ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestListTranscriptsHandler_AllowsAdminUserIDLookup(t *testing.T) {
	store := &fakeTranscriptStore{byUser: []models.TranscriptRecord{{UserID: "someone-else", Body: "hey"}}}
	s := &Server{transcripts: store}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts?user_id=someone-else", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalContextKey, Principal{UserID: "admin-1", Role: RoleAdmin})

	require.NoError(t, s.listTranscriptsHandler(c))
	var resp ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
}

func TestUpdateTranscriptHandler_RejectsMalformedBody(t *testing.T) {
	s := &Server{transcripts: &fakeTranscriptStore{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/transcripts/t1", httptestBadJSONBody())
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.updateTranscriptHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

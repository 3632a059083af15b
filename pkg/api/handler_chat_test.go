package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatHandler's happy path drives a real *orchestrator.Orchestrator, so we
// only test parameter validation here (it returns 400 before ever touching
// the orchestrator). Happy-path behavior is covered by
// orchestrator/scriptpipeline's own tests plus integration/e2e tests that
// wire a real Server.
func TestChatHandler_RejectsMalformedBody(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql/chat", httptestBadJSONBody())
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.chatHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestChatHandler_RejectsEmptyQuery(t *testing.T) {
	s := &Server{}
	e := echo.New()
	body := `{"query":"","session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.chatHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

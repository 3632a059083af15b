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

// processScriptHandler's happy path drives a real *scriptpipeline.Pipeline,
// so only parameter validation is tested here (mirroring chatHandler's
// tests); happy-path behavior is covered by scriptpipeline's own tests.
func TestProcessScriptHandler_RejectsMalformedBody(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql/process_script", httptestBadJSONBody())
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.processScriptHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestContinueConversationHandler_RejectsMissingFields(t *testing.T) {
	cases := []string{
		`{"session_id":"","user_text":"yes"}`,
		`{"session_id":"s1","user_text":""}`,
	}
	for _, body := range cases {
		s := &Server{}
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/graphql/continue_conversation", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := s.continueConversationHandler(c)
		require.Error(t, err)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestContinueConversationHandler_RejectsMalformedBody(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql/continue_conversation", httptestBadJSONBody())
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.continueConversationHandler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/agents"
	"github.com/tarsy-labs/storefront-coe/pkg/classifier"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

type fakeSessions struct {
	sessions map[string]*models.Session
	saved    *models.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{sessions: map[string]*models.Session{}} }

func (f *fakeSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	return f.sessions[id], nil
}
func (f *fakeSessions) Save(ctx context.Context, s *models.Session) error {
	f.saved = s
	f.sessions[s.SessionID] = s
	return nil
}
func (f *fakeSessions) ExtendTTL(ctx context.Context, id string) error { return nil }
func (f *fakeSessions) Delete(ctx context.Context, id string) error    { return nil }
func (f *fakeSessions) Count(ctx context.Context) (int, error)         { return 0, nil }
func (f *fakeSessions) GetScript(ctx context.Context, id string) (*models.ScriptSession, error) {
	return nil, nil
}
func (f *fakeSessions) SaveScript(ctx context.Context, s *models.ScriptSession) error { return nil }
func (f *fakeSessions) DeleteScript(ctx context.Context, id string) error             { return nil }
func (f *fakeSessions) HealthCheck(ctx context.Context) error                        { return nil }

type fakeTranscripts struct {
	appended []models.TranscriptRecord
}

func (f *fakeTranscripts) Append(ctx context.Context, rec *models.TranscriptRecord) error {
	f.appended = append(f.appended, *rec)
	return nil
}
func (f *fakeTranscripts) GetBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	return nil, 0, nil
}
func (f *fakeTranscripts) GetByUser(ctx context.Context, userID string, limit, offset int) ([]models.TranscriptRecord, int, error) {
	return nil, 0, nil
}
func (f *fakeTranscripts) GetByOrder(ctx context.Context, orderID string) ([]models.TranscriptRecord, error) {
	return nil, nil
}
func (f *fakeTranscripts) Update(ctx context.Context, id, body string, metadata map[string]any) error {
	return nil
}
func (f *fakeTranscripts) Delete(ctx context.Context, id string) error  { return nil }
func (f *fakeTranscripts) Archive(ctx context.Context, id string) error { return nil }
func (f *fakeTranscripts) ListConversations(ctx context.Context, limit int) ([]models.ConversationSummary, error) {
	return nil, nil
}

type stubAgent struct {
	name           agents.Name
	reply          string
	shouldTransfer bool
	transferTo     agents.Name
	calls          int
}

func (a *stubAgent) Name() agents.Name { return a.name }
func (a *stubAgent) CanHandle(s *models.Session) bool { return true }
func (a *stubAgent) Process(ctx context.Context, s *models.Session) agents.AgentResponse {
	a.calls++
	return agents.AgentResponse{Agent: a.name, ReplyText: a.reply, ShouldTransfer: a.shouldTransfer, TransferTo: a.transferTo}
}

func TestProcess_StopIntentShortCircuitsBeforeClassification(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)
	retriever := &stubAgent{name: agents.NameRetriever, reply: "should not be called"}
	registry := map[agents.Name]agents.Agent{agents.NameRetriever: retriever}

	o := New(sessions, transcripts, cls, registry, nil)
	resp := o.Process(context.Background(), "no gracias, chao", "", "")

	assert.Equal(t, 0, retriever.calls)
	assert.NotEmpty(t, resp.ReplyText)
	assert.Len(t, transcripts.appended, 2)
}

func TestProcess_RoutesToSuggestedAgent(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)
	retriever := &stubAgent{name: agents.NameRetriever, reply: "aqui tienes"}
	sales := &stubAgent{name: agents.NameSales, reply: "te recomiendo"}
	registry := map[agents.Name]agents.Agent{agents.NameRetriever: retriever, agents.NameSales: sales}

	o := New(sessions, transcripts, cls, registry, nil)
	resp := o.Process(context.Background(), "busco unos zapatos", "", "")

	assert.Equal(t, agents.NameRetriever, resp.Agent)
	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, 0, sales.calls)
}

func TestProcess_TransferLoopBreaksAfterRepeatedEdge(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)

	retriever := &stubAgent{name: agents.NameRetriever, reply: "r", shouldTransfer: true, transferTo: agents.NameSales}
	sales := &stubAgent{name: agents.NameSales, reply: "s", shouldTransfer: true, transferTo: agents.NameRetriever}
	registry := map[agents.Name]agents.Agent{agents.NameRetriever: retriever, agents.NameSales: sales}

	o := New(sessions, transcripts, cls, registry, nil)
	resp := o.Process(context.Background(), "busco unos zapatos", "", "")

	require.NotNil(t, resp)
	assert.LessOrEqual(t, retriever.calls+sales.calls, maxTransfers+1)
}

func TestProcess_UnknownSuggestedAgentFallsBackToSales(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)
	sales := &stubAgent{name: agents.NameSales, reply: "te recomiendo"}
	registry := map[agents.Name]agents.Agent{agents.NameSales: sales}

	o := New(sessions, transcripts, cls, registry, nil)
	resp := o.Process(context.Background(), "busco unos zapatos", "", "")

	assert.Equal(t, agents.NameSales, resp.Agent)
	assert.Equal(t, 1, sales.calls)
}

func TestProcess_AgentPanicSynthesizesApology(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)
	registry := map[agents.Name]agents.Agent{agents.NameSales: panickyAgent{}}

	o := New(sessions, transcripts, cls, registry, nil)
	resp := o.Process(context.Background(), "recomiéndame algo", "", "")

	assert.NotEmpty(t, resp.ReplyText)
}

type panickyAgent struct{}

func (panickyAgent) Name() agents.Name                  { return agents.NameSales }
func (panickyAgent) CanHandle(*models.Session) bool     { return true }
func (panickyAgent) Process(context.Context, *models.Session) agents.AgentResponse {
	panic("boom")
}

func TestProcess_PersistsSessionAndTranscriptsOnce(t *testing.T) {
	sessions := newFakeSessions()
	transcripts := &fakeTranscripts{}
	cls := classifier.New(nil, nil)
	sales := &stubAgent{name: agents.NameSales, reply: "ok"}
	registry := map[agents.Name]agents.Agent{agents.NameSales: sales}

	o := New(sessions, transcripts, cls, registry, nil)
	o.Process(context.Background(), "recomiéndame algo", "", "")

	require.NotNil(t, sessions.saved)
	require.Len(t, transcripts.appended, 2)
	assert.Equal(t, models.RoleUser, transcripts.appended[0].Role)
	assert.Equal(t, models.RoleAssistant, transcripts.appended[1].Role)
}

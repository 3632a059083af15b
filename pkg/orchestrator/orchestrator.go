// Package orchestrator implements Orchestrator: the single entry point that
// turns one chat utterance into one agent response, owning Session
// lifecycle, stop-intent short-circuiting, style/intent classification, and
// the bounded multi-agent handoff loop (§4.7).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tarsy-labs/storefront-coe/pkg/agents"
	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/classifier"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/session"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
	"github.com/tarsy-labs/storefront-coe/pkg/transcript"
)

// maxTransfers bounds the handoff loop (§4.7 step 7: "transfer count < 3").
const maxTransfers = 3

// maxEdgeRepeats is how many times the same from→to edge may appear in one
// turn's transfer history before the loop is broken (§4.7 step 7).
const maxEdgeRepeats = 2

// Response is what Process returns to the transport layer.
type Response struct {
	Agent          agents.Name
	ReplyText      string
	Style          models.Style
	ShouldTransfer bool
	Metadata       map[string]any
}

// Orchestrator wires the Classifier and the three Agents together over a
// single Session per turn.
type Orchestrator struct {
	sessions    session.Store
	transcripts transcript.Store
	classifier  *classifier.Classifier
	registry    map[agents.Name]agents.Agent
	logger      *slog.Logger
}

func New(sessions session.Store, transcripts transcript.Store, cls *classifier.Classifier, registry map[agents.Name]agents.Agent, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{sessions: sessions, transcripts: transcripts, classifier: cls, registry: registry, logger: logger}
}

// Process runs one full turn: load-or-create the session, classify, route,
// run the bounded transfer loop, then persist everything (§4.7).
func (o *Orchestrator) Process(ctx context.Context, utterance, sessionID, userID string) Response {
	sess, err := o.loadOrCreateSession(ctx, sessionID, userID)
	if err != nil {
		o.logger.Error("orchestrator: emergency fallback after session load failure", "error", err)
		return o.emergencyResponse(sessionID)
	}

	sess.RecentUtterance = utterance
	sess.PushHistory(models.RoleUser, utterance)

	if styles.IsStopIntent(utterance) {
		reply := styles.Render(sess.Style, styles.KindFarewell)
		sess.PushHistory(models.RoleAssistant, reply)
		o.finish(ctx, sess, reply, userID)
		return Response{Agent: "", ReplyText: reply, Style: sess.Style}
	}

	if sess.Style == "" || sess.Style == models.StyleNeutral {
		styleResult := o.classifier.DetectStyle(sess, sess.RecentUserUtterances(5))
		sess.Style = styleResult.Style
	}

	var startAgent agents.Name
	if sess.CheckoutStage == "" {
		intentResult := o.classifier.ClassifyIntent(sess, utterance)
		sess.LastIntent = intentResult.Intent
		startAgent = agents.Name(intentResult.SuggestedAgent)
	} else {
		startAgent = agents.NameCheckout
		sess.LastIntent = models.IntentCheckout
	}

	if _, ok := o.registry[startAgent]; !ok {
		startAgent = agents.NameSales
	}

	resp := o.runAgent(ctx, startAgent, sess)

	transferHistory := map[string]int{}
	transferCount := 0
	current := startAgent
	for resp.ShouldTransfer && transferCount < maxTransfers {
		edge := transferKey(current, resp.TransferTo)
		if transferHistory[edge] >= maxEdgeRepeats {
			o.logger.Warn("orchestrator: breaking transfer loop", "edge", edge)
			break
		}
		transferHistory[edge]++
		transferCount++

		next := resp.TransferTo
		if _, ok := o.registry[next]; !ok {
			break
		}
		resp = o.runAgent(ctx, next, sess)
		current = next
	}

	sess.PushHistory(models.RoleAssistant, resp.ReplyText)
	o.finish(ctx, sess, resp.ReplyText, userID)

	return Response{
		Agent:          resp.Agent,
		ReplyText:      resp.ReplyText,
		Style:          sess.Style,
		ShouldTransfer: resp.ShouldTransfer,
		Metadata:       resp.Metadata,
	}
}

func transferKey(from, to agents.Name) string {
	return fmt.Sprintf("%s->%s", from, to)
}

// runAgent calls agent.Process, converting a panic (an "exception" in
// spec.md's vocabulary) into a generic apology rather than letting it
// escape the turn (§4.7 step 6).
func (o *Orchestrator) runAgent(ctx context.Context, name agents.Name, sess *models.Session) (resp agents.AgentResponse) {
	agent, ok := o.registry[name]
	if !ok {
		return agents.AgentResponse{Agent: name, ReplyText: styles.Render(sess.Style, styles.KindGenericApology)}
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestrator: agent panicked, synthesizing apology", "agent", name, "panic", r)
			resp = agents.AgentResponse{Agent: name, ReplyText: styles.Render(sess.Style, styles.KindGenericApology)}
		}
	}()

	return agent.Process(ctx, sess)
}

func (o *Orchestrator) loadOrCreateSession(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	if sessionID != "" {
		sess, err := o.sessions.Get(ctx, sessionID)
		switch {
		case err != nil && apperrors.KindOf(err) != apperrors.KindNotFound:
			return nil, err
		case err == nil && sess != nil:
			if userID != "" {
				sess.UserID = userID
			}
			return sess, nil
		}
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &models.Session{
		SessionID: sessionID,
		UserID:    userID,
		Style:     models.StyleNeutral,
		CreatedAt: time.Now(),
	}, nil
}

// finish persists the session and appends both transcript turns, per §4.7
// step 8. Failures are logged, never returned: a storage hiccup must not
// turn an otherwise-successful turn into an error for the shopper.
func (o *Orchestrator) finish(ctx context.Context, sess *models.Session, reply, userID string) {
	if err := o.sessions.Save(ctx, sess); err != nil {
		o.logger.Error("orchestrator: save session failed", "error", err)
	}

	if err := o.transcripts.Append(ctx, &models.TranscriptRecord{
		SessionID: sess.SessionID,
		UserID:    userID,
		Role:      models.RoleUser,
		Body:      sess.RecentUtterance,
	}); err != nil {
		o.logger.Error("orchestrator: append user transcript failed", "error", err)
	}
	if err := o.transcripts.Append(ctx, &models.TranscriptRecord{
		SessionID: sess.SessionID,
		UserID:    userID,
		Role:      models.RoleAssistant,
		Body:      reply,
	}); err != nil {
		o.logger.Error("orchestrator: append agent transcript failed", "error", err)
	}
}

// emergencyResponse is used when even loading/creating a Session fails
// (§4.7: "any unhandled exception at step 1 produces an emergency response
// with a minimal fresh Session").
func (o *Orchestrator) emergencyResponse(sessionID string) Response {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return Response{
		ReplyText: styles.Render(models.StyleNeutral, styles.KindGenericApology),
		Style:     models.StyleNeutral,
	}
}

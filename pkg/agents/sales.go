package agents

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/llmprovider"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/retrieval"
	"github.com/tarsy-labs/storefront-coe/pkg/scriptpipeline"
	"github.com/tarsy-labs/storefront-coe/pkg/session"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
)

// salesLLMBudget is the soft deadline for a generic-question answer
// (§4.6.2: "call the LLM with a 10-second budget").
const salesLLMBudget = 10 * time.Second

const salesRetrievalTopK = 2

// Sales answers `persuasion`/`recommendation` intents (§4.6.2). When the
// session already carries a ScriptSession, it delegates the turn to
// ScriptPipeline.ContinueCore rather than generating a fresh answer — the
// pure core mutates the ScriptSession only, so Sales itself persists it via
// SaveScript and leaves transcript append to the Orchestrator, preserving
// the "exactly one user/agent transcript per turn" invariant (§8).
type Sales struct {
	sessions  session.Store
	pipeline  *scriptpipeline.Pipeline
	retriever retrieval.Retriever
	llm       llmprovider.Provider
	logger    *slog.Logger
}

func NewSales(sessions session.Store, pipeline *scriptpipeline.Pipeline, r retrieval.Retriever, llm llmprovider.Provider, logger *slog.Logger) *Sales {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sales{sessions: sessions, pipeline: pipeline, retriever: r, llm: llm, logger: logger}
}

func (s *Sales) Name() Name { return NameSales }

func (s *Sales) CanHandle(session *models.Session) bool {
	return session.LastIntent == models.IntentPersuasion || session.LastIntent == models.IntentRecommendation
}

func (s *Sales) Process(ctx context.Context, sess *models.Session) AgentResponse {
	ss, err := s.sessions.GetScript(ctx, sess.SessionID)
	if err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
		s.logger.Warn("sales: get script session failed", "error", err)
	}
	if ss != nil {
		return s.processScriptContinuation(ctx, sess, ss)
	}
	return s.processGenericQuestion(ctx, sess)
}

func (s *Sales) processScriptContinuation(ctx context.Context, sess *models.Session, ss *models.ScriptSession) AgentResponse {
	reply, next, order, err := s.pipeline.ContinueCore(ctx, ss, sess.RecentUtterance)
	if err != nil {
		resp := AgentResponse{Agent: NameSales, ReplyText: styles.Render(sess.Style, styles.KindCheckoutRetry)}
		return errorMetadata(resp, string(apperrors.KindOf(err)))
	}

	if next == models.NextStepOrderCompleted {
		if delErr := s.sessions.DeleteScript(ctx, sess.SessionID); delErr != nil {
			s.logger.Warn("sales: delete completed script session failed", "error", delErr)
		}
	} else if saveErr := s.sessions.SaveScript(ctx, ss); saveErr != nil {
		s.logger.Warn("sales: save script session failed", "error", saveErr)
	}

	resp := AgentResponse{Agent: NameSales, ReplyText: reply}
	resp = withMetadata(resp, "next_step", string(next))
	if order != nil {
		resp = withMetadata(resp, "order_id", order.ID)
	}
	return resp
}

func (s *Sales) processGenericQuestion(ctx context.Context, sess *models.Session) AgentResponse {
	style := sess.Style

	system := "Eres Alex, un asesor de ventas conversacional para una tienda de artículos deportivos. " +
		"Responde de forma breve, cercana y honesta; no inventes precios, stock ni políticas."
	if s.retriever != nil {
		if passages, err := s.retriever.Retrieve(ctx, sess.RecentUtterance, salesRetrievalTopK); err == nil && len(passages) > 0 {
			if best, ok := retrieval.BestPassage(passages); ok {
				system += " Contexto relevante: " + best
			}
		}
	}

	llmCtx, cancel := context.WithTimeout(ctx, salesLLMBudget)
	defer cancel()

	text, err := s.llm.Complete(llmCtx, llmprovider.CompletionRequest{
		System:    system,
		User:      sess.RecentUtterance,
		MaxTokens: 220,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.logger.Warn("sales: generic answer generation failed", "error", err)
		}
		resp := AgentResponse{Agent: NameSales, ReplyText: styles.Render(style, styles.KindSalesApology)}
		if err != nil {
			resp = errorMetadata(resp, string(apperrors.KindOf(err)))
		}
		return resp
	}

	return AgentResponse{Agent: NameSales, ReplyText: strings.TrimSpace(text)}
}

// Package scriptpipeline implements ScriptPipeline: the structured,
// barcode-driven entry point for a script-produced shopping brief (§4.8).
// Unlike the turn-based Orchestrator, a script arrives fully formed — no
// classification step is needed, only resolution (barcodes to catalog
// rows), ranking, and a persuasive message.
package scriptpipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/catalog"
	"github.com/tarsy-labs/storefront-coe/pkg/comparator"
	"github.com/tarsy-labs/storefront-coe/pkg/llmprovider"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/orderbook"
	"github.com/tarsy-labs/storefront-coe/pkg/redact"
	"github.com/tarsy-labs/storefront-coe/pkg/session"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
	"github.com/tarsy-labs/storefront-coe/pkg/transcript"
	"github.com/tarsy-labs/storefront-coe/pkg/ttsprovider"
)

// llmBudget is the soft deadline for the persuasive-message generation call
// (§4.8 step 4); a timeout falls back to deterministicPersuasion rather than
// failing the whole script.
const llmBudget = 10 * time.Second

// scriptSessionTTL is the lifetime of a persisted ScriptSession (§4.8 step
// 6: "index 0, 30 minute TTL").
const scriptSessionTTL = 30 * time.Minute

// Deps are the Pipeline's collaborators.
type Deps struct {
	Catalog     catalog.Catalog
	Comparator  *comparator.Comparator
	OrderBook   orderbook.OrderBook
	Sessions    session.Store
	Transcripts transcript.Store
	LLM         llmprovider.Provider
	TTS         ttsprovider.Provider
	Logger      *slog.Logger
}

// Pipeline implements ProcessScript and the script-continuation operation.
type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.TTS == nil {
		deps.TTS = ttsprovider.NoopProvider{}
	}
	return &Pipeline{deps: deps}
}

// ProcessResult is ProcessScript's return value.
type ProcessResult struct {
	Ranked    []models.ProductProjection
	BestID    string
	Reasoning string
	Message   string
	AudioURL  string
}

// ProcessScript resolves a Script's barcodes against the catalog, ranks the
// resolved products, composes a persuasive message, and persists the
// resulting ScriptSession (§4.8 steps 1-6).
func (p *Pipeline) ProcessScript(ctx context.Context, script models.Script) (*ProcessResult, error) {
	barcodes := script.Barcodes()
	if len(barcodes) == 0 {
		return nil, apperrors.Validation("products", "script has no barcoded products")
	}

	projections, err := p.deps.Catalog.GetByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, err
	}
	if len(projections) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "none of the script's products were found")
	}

	ordered := reorderByBarcode(projections, barcodes)

	result := p.deps.Comparator.Rank(ordered, script)
	if len(result.Ranked) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "no rankable products")
	}

	best := result.Ranked[0]
	lead := p.composeLead(ctx, best, script, result.Reasoning)
	message := buildFullMessage(lead, result.Ranked, result.BestID, script.Context.PrimaryIntent)

	ss := &models.ScriptSession{
		SessionID:   script.SessionID,
		Ranked:      result.Ranked,
		ChosenIndex: 0,
		Style:       script.Preferences.Style,
		CreatedAt:   time.Now(),
	}
	if err := p.deps.Sessions.SaveScript(ctx, ss); err != nil {
		p.deps.Logger.Warn("scriptpipeline: save script session failed", "error", err)
	}

	if err := p.appendTurn(ctx, script.SessionID, models.RoleUser, script.OriginalText); err != nil {
		p.deps.Logger.Warn("scriptpipeline: append user transcript failed", "error", err)
	}
	if err := p.appendTurn(ctx, script.SessionID, models.RoleAssistant, message); err != nil {
		p.deps.Logger.Warn("scriptpipeline: append agent transcript failed", "error", err)
	}

	audioURL, err := p.deps.TTS.Synthesize(ctx, message, string(script.Preferences.Style))
	if err != nil {
		p.deps.Logger.Warn("scriptpipeline: tts synthesis failed", "error", err)
	}

	return &ProcessResult{
		Ranked:    result.Ranked,
		BestID:    result.BestID,
		Reasoning: result.Reasoning,
		Message:   message,
		AudioURL:  audioURL,
	}, nil
}

// reorderByBarcode reorders projections to match the input barcode order,
// since the catalog's `= ANY($1)` query does not preserve it (§4.8 step 2).
func reorderByBarcode(projections []models.ProductProjection, barcodes []string) []models.ProductProjection {
	byBarcode := make(map[string]models.ProductProjection, len(projections))
	for _, p := range projections {
		byBarcode[p.Barcode] = p
	}
	out := make([]models.ProductProjection, 0, len(projections))
	seen := make(map[string]bool, len(projections))
	for _, bc := range barcodes {
		if p, ok := byBarcode[bc]; ok && !seen[bc] {
			out = append(out, p)
			seen[bc] = true
		}
	}
	return out
}

// composeLead asks the LLM for a short persuasive lead-in, falling back to
// deterministicPersuasion on any failure or timeout (§4.8 step 4).
func (p *Pipeline) composeLead(ctx context.Context, best models.ProductProjection, script models.Script, reasoning string) string {
	if p.deps.LLM == nil {
		return deterministicPersuasion(best, script.Context.PrimaryIntent)
	}

	llmCtx, cancel := context.WithTimeout(ctx, llmBudget)
	defer cancel()

	req := llmprovider.CompletionRequest{
		System: "Eres Alex, un asesor de ventas conversacional para una tienda de artículos deportivos. " +
			"Escribe un mensaje breve, persuasivo y natural recomendando el mejor producto, usando el " +
			"razonamiento dado. No inventes precios ni stock.",
		User:      "Producto recomendado: " + best.Name + ". Razonamiento: " + reasoning,
		MaxTokens: 180,
	}

	text, err := p.deps.LLM.Complete(llmCtx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			p.deps.Logger.Warn("scriptpipeline: lead-in generation failed, using deterministic fallback", "error", err)
		}
		return deterministicPersuasion(best, script.Context.PrimaryIntent)
	}
	return strings.TrimSpace(text)
}

func (p *Pipeline) appendTurn(ctx context.Context, sessionID string, role models.Role, body string) error {
	return p.deps.Transcripts.Append(ctx, &models.TranscriptRecord{
		SessionID: sessionID,
		Role:      role,
		Body:      body,
	})
}

// sizeRe captures a bare shoe-size integer in the continuation reply
// (§4.8's continuation step: "shipping info" carries a size in [35,50]).
var sizeRe = regexp.MustCompile(`\b(3[5-9]|4[0-9]|50)\b`)

// ContinueCore is the pure decision core of the continuation operation: it
// classifies userText against the ScriptSession's current stage, mutates ss
// in place, and — only when the shopper has confirmed and supplied shipping
// info — places the order via OrderBook. It performs no transcript append
// and no session persistence, so callers that own their own turn-accounting
// (agents.Sales mid-turn) can use it without double-writing a transcript
// (§8: "exactly one user transcript and one agent transcript per turn").
func (p *Pipeline) ContinueCore(ctx context.Context, ss *models.ScriptSession, userText string) (reply string, next models.NextStep, order *models.Order, err error) {
	current, ok := ss.Current()
	if !ok {
		return styles.Render(ss.Style, styles.KindCheckoutNoMoreAlts), models.NextStepShowAlternatives, nil, nil
	}

	if !ss.Approved {
		affirmative, negative := styles.YesNo(userText)
		switch {
		case affirmative:
			ss.Approved = true
			return styles.Render(ss.Style, styles.KindCheckoutAddressAsk), models.NextStepNeedShipping, nil, nil
		case negative:
			if !ss.Advance() {
				return styles.Render(ss.Style, styles.KindCheckoutNoMoreAlts), models.NextStepRetry, nil, nil
			}
			alt, _ := ss.Current()
			lead := deterministicPersuasion(alt, models.PrimaryIntentRecommend)
			return lead, models.NextStepConfirmBuy, nil, nil
		default:
			return styles.Render(ss.Style, styles.KindCheckoutConfirmAsk, current.Name, money(current.FinalPrice)), models.NextStepConfirmBuy, nil, nil
		}
	}

	size, address, ok := parseShippingInfo(userText)
	if !ok {
		return styles.Render(ss.Style, styles.KindCheckoutAddressAsk), models.NextStepNeedShipping, nil, nil
	}
	ss.ShippingInfo = &models.ShippingInfo{Size: size, Address: address}
	p.deps.Logger.Debug("scriptpipeline: captured shipping info", "session_id", ss.SessionID, "size", size, "address", redact.ShippingAddress(address))

	if !current.Available() {
		if !ss.Advance() {
			return styles.Render(ss.Style, styles.KindCheckoutOutOfStock), models.NextStepShowAlternatives, nil, nil
		}
		ss.Approved = false
		return styles.Render(ss.Style, styles.KindCheckoutOutOfStock), models.NextStepRetry, nil, nil
	}

	createdOrder, createErr := p.deps.OrderBook.CreateOrder(ctx, orderbook.CreateOrderInput{
		SessionID:       ss.SessionID,
		Lines:           []orderbook.LineRequest{{ProductID: current.ID, Quantity: 1}},
		ShippingAddress: address,
	})
	if createErr != nil {
		if apperrors.KindOf(createErr) == apperrors.KindConflict {
			return styles.Render(ss.Style, styles.KindCheckoutOutOfStock), models.NextStepRetry, nil, nil
		}
		return styles.Render(ss.Style, styles.KindCheckoutRetry), models.NextStepRetry, nil, createErr
	}

	ss.OrderID = createdOrder.ID
	reply = styles.Render(ss.Style, styles.KindCheckoutOrderDone, models.OrderNumber(createdOrder.ID), money(createdOrder.Total))
	return reply, models.NextStepOrderCompleted, createdOrder, nil
}

// parseShippingInfo extracts a size token and treats the remainder as the
// address, per §4.8's continuation step. A reply with no recognizable size
// is not yet "shipping info".
func parseShippingInfo(text string) (size int, address string, ok bool) {
	match := sizeRe.FindString(text)
	if match == "" {
		return 0, "", false
	}
	size, _ = strconv.Atoi(match)
	address = strings.TrimSpace(sizeRe.ReplaceAllString(text, ""))
	if address == "" {
		return 0, "", false
	}
	return size, address, true
}

// ContinueResult is ContinueConversation's return value.
type ContinueResult struct {
	Reply    string
	NextStep models.NextStep
	Order    *models.Order
	AudioURL string
}

// ContinueConversation is the full, self-contained continuation operation
// used by the standalone continue_conversation mutation (§6): it loads the
// ScriptSession, runs ContinueCore, persists the mutated session, appends
// both transcript turns, and attempts TTS — all side effects ContinueCore
// itself deliberately omits.
func (p *Pipeline) ContinueConversation(ctx context.Context, sessionID, userText string) (*ContinueResult, error) {
	ss, err := p.deps.Sessions.GetScript(ctx, sessionID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "no script session for this session id")
		}
		return nil, err
	}
	if ss == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "no script session for this session id")
	}

	reply, next, order, err := p.ContinueCore(ctx, ss, userText)
	if err != nil {
		return nil, err
	}

	if next == models.NextStepOrderCompleted {
		if delErr := p.deps.Sessions.DeleteScript(ctx, sessionID); delErr != nil {
			p.deps.Logger.Warn("scriptpipeline: delete completed script session failed", "error", delErr)
		}
	} else if saveErr := p.deps.Sessions.SaveScript(ctx, ss); saveErr != nil {
		p.deps.Logger.Warn("scriptpipeline: save script session failed", "error", saveErr)
	}

	if appendErr := p.appendTurn(ctx, sessionID, models.RoleUser, userText); appendErr != nil {
		p.deps.Logger.Warn("scriptpipeline: append user transcript failed", "error", appendErr)
	}
	if appendErr := p.appendTurn(ctx, sessionID, models.RoleAssistant, reply); appendErr != nil {
		p.deps.Logger.Warn("scriptpipeline: append agent transcript failed", "error", appendErr)
	}

	audioURL, ttsErr := p.deps.TTS.Synthesize(ctx, reply, string(ss.Style))
	if ttsErr != nil {
		p.deps.Logger.Warn("scriptpipeline: tts synthesis failed", "error", ttsErr)
	}

	return &ContinueResult{Reply: reply, NextStep: next, Order: order, AudioURL: audioURL}, nil
}

func money(m models.Money) string {
	return "$" + m.StringFixed(2)
}

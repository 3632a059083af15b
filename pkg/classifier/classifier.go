// Package classifier implements Classifier: LLM-first intent classification
// and communication-style detection, with a deterministic keyword fallback
// and a fixed-budget timeout on the LLM path (§4.5).
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/llmprovider"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
)

// classifyBudget and styleBudget are both the 5-second LLM budget named in
// §5 ("LLM 5s (classification and style)").
const (
	classifyBudget = 5 * time.Second
	styleBudget    = 5 * time.Second
)

// IntentResult is ClassifyIntent's return value.
type IntentResult struct {
	Intent         models.Intent
	Confidence     float64
	SuggestedAgent string
	Rationale      string
}

// StyleResult is DetectStyle's return value.
type StyleResult struct {
	Style      models.Style
	Confidence float64
	Patterns   []string
	Samples    []string
}

// agentFor maps an intent to its routing target, per §4.5's fixed table.
var agentFor = map[models.Intent]string{
	models.IntentSearch:         "retriever",
	models.IntentPersuasion:     "sales",
	models.IntentCheckout:       "checkout",
	models.IntentInfo:           "retriever",
	models.IntentRecommendation: "sales",
}

// Classifier never raises; every failure degrades to the keyword fallback
// or to a neutral default, per §7 ("Classifier never raises; it always
// degrades").
type Classifier struct {
	llm    llmprovider.Provider
	logger *slog.Logger
}

func New(llm llmprovider.Provider, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{llm: llm, logger: logger}
}

type llmLabelReply struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

var validIntents = map[string]models.Intent{
	"search":         models.IntentSearch,
	"persuasion":     models.IntentPersuasion,
	"checkout":       models.IntentCheckout,
	"info":           models.IntentInfo,
	"recommendation": models.IntentRecommendation,
}

// ClassifyIntent attempts the LLM path first with a 5-second budget; on
// timeout, parse failure, an out-of-set label, or any LLM error, it falls
// back to the keyword path.
func (c *Classifier) ClassifyIntent(session *models.Session, utterance string) IntentResult {
	if c.llm != nil {
		if result, ok := c.classifyViaLLM(utterance); ok {
			return result
		}
	}
	return c.classifyViaKeywords(session, utterance)
}

func (c *Classifier) classifyViaLLM(utterance string) (IntentResult, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), classifyBudget)
	defer cancel()

	reply, err := c.llm.Complete(ctx, llmprovider.CompletionRequest{
		System: intentSystemPrompt,
		User:   utterance,
	})
	if err != nil {
		c.logger.Debug("classifier: llm intent call failed, falling back", "error", err)
		return IntentResult{}, false
	}

	jsonBody, err := llmprovider.ExtractJSON(reply)
	if err != nil {
		c.logger.Debug("classifier: llm intent reply not parseable, falling back", "error", err)
		return IntentResult{}, false
	}

	var parsed llmLabelReply
	if err := json.Unmarshal([]byte(jsonBody), &parsed); err != nil {
		c.logger.Debug("classifier: llm intent reply malformed, falling back", "error", err)
		return IntentResult{}, false
	}

	intent, ok := validIntents[strings.ToLower(strings.TrimSpace(parsed.Label))]
	if !ok {
		c.logger.Debug("classifier: llm intent label outside closed set, falling back", "label", parsed.Label)
		return IntentResult{}, false
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return IntentResult{
		Intent:         intent,
		Confidence:     confidence,
		SuggestedAgent: agentFor[intent],
		Rationale:      parsed.Rationale,
	}, true
}

// classifyViaKeywords scores each label by counting keyword occurrences in
// the lowercased utterance. The highest non-zero score wins; ties favor
// persuasion, unless prior search results are present, in which case ties
// favor checkout when a checkout keyword matched, else persuasion. A
// zero-score result returns persuasion at confidence 1/3.
func (c *Classifier) classifyViaKeywords(session *models.Session, utterance string) IntentResult {
	lower := strings.ToLower(utterance)

	scores := make(map[models.Intent]int, len(styles.IntentKeywords))
	best := models.IntentPersuasion
	bestScore := 0

	order := []models.Intent{
		models.IntentSearch, models.IntentPersuasion, models.IntentCheckout,
		models.IntentInfo, models.IntentRecommendation,
	}
	for _, intent := range order {
		count := 0
		for _, kw := range styles.IntentKeywords[intent] {
			count += strings.Count(lower, kw)
		}
		scores[intent] = count
		if count > bestScore {
			bestScore = count
			best = intent
		}
	}

	if bestScore == 0 {
		return IntentResult{
			Intent:         models.IntentPersuasion,
			Confidence:     1.0 / 3.0,
			SuggestedAgent: agentFor[models.IntentPersuasion],
			Rationale:      "keyword fallback: no keyword matched",
		}
	}

	tied := tiedIntents(scores, bestScore, order)
	if len(tied) > 1 {
		hasPriorSearch := len(session.LastSearchResults) > 0
		if hasPriorSearch && styles.CheckoutKeywordMatched(lower) {
			best = models.IntentCheckout
		} else {
			best = models.IntentPersuasion
		}
	}

	confidence := float64(bestScore) / 3.0
	if confidence > 1 {
		confidence = 1
	}

	return IntentResult{
		Intent:         best,
		Confidence:     confidence,
		SuggestedAgent: agentFor[best],
		Rationale:      fmt.Sprintf("keyword fallback: score=%d", bestScore),
	}
}

func tiedIntents(scores map[models.Intent]int, best int, order []models.Intent) []models.Intent {
	var tied []models.Intent
	for _, intent := range order {
		if scores[intent] == best {
			tied = append(tied, intent)
		}
	}
	return tied
}

// DetectStyle attempts the LLM path first with a 5-second budget; on
// failure it falls back to the keyword-marker path; on failure of that
// (or an empty utterance set) it defaults to neutral. DetectStyle is
// idempotent on a frozen history: it never mutates session or utterances.
func (c *Classifier) DetectStyle(session *models.Session, recentUserUtterances []string) StyleResult {
	if c.llm != nil {
		if result, ok := c.detectStyleViaLLM(recentUserUtterances); ok {
			return result
		}
	}
	return c.detectStyleViaKeywords(recentUserUtterances)
}

func (c *Classifier) detectStyleViaLLM(utterances []string) (StyleResult, bool) {
	if len(utterances) == 0 {
		return StyleResult{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), styleBudget)
	defer cancel()

	reply, err := c.llm.Complete(ctx, llmprovider.CompletionRequest{
		System: styleSystemPrompt,
		User:   strings.Join(utterances, "\n"),
	})
	if err != nil {
		c.logger.Debug("classifier: llm style call failed, falling back", "error", err)
		return StyleResult{}, false
	}

	jsonBody, err := llmprovider.ExtractJSON(reply)
	if err != nil {
		return StyleResult{}, false
	}

	var parsed llmLabelReply
	if err := json.Unmarshal([]byte(jsonBody), &parsed); err != nil {
		return StyleResult{}, false
	}

	style, ok := validStyle(parsed.Label)
	if !ok {
		return StyleResult{}, false
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return StyleResult{Style: style, Confidence: confidence, Samples: utterances}, true
}

func (c *Classifier) detectStyleViaKeywords(utterances []string) StyleResult {
	if len(utterances) == 0 {
		return StyleResult{Style: models.StyleNeutral, Confidence: 1.0 / 3.0}
	}

	style, score, samples := styles.ScoreStyle(utterances)
	if score == 0 {
		return StyleResult{Style: models.StyleNeutral, Confidence: 1.0 / 3.0}
	}

	confidence := float64(score) / 3.0
	if confidence > 1 {
		confidence = 1
	}
	return StyleResult{Style: style, Confidence: confidence, Patterns: samples, Samples: utterances}
}

func validStyle(label string) (models.Style, bool) {
	switch models.Style(strings.ToLower(strings.TrimSpace(label))) {
	case models.StyleCuencano:
		return models.StyleCuencano, true
	case models.StyleJuvenil:
		return models.StyleJuvenil, true
	case models.StyleFormal:
		return models.StyleFormal, true
	case models.StyleNeutral:
		return models.StyleNeutral, true
	default:
		return "", false
	}
}

const intentSystemPrompt = `You classify a shopper's message into exactly one label:
search, persuasion, checkout, info, recommendation.
Reply with strict JSON only: {"label": "...", "confidence": 0.0-1.0, "rationale": "..."}.`

const styleSystemPrompt = `You detect a shopper's communication register from recent messages:
cuencano, juvenil, formal, neutral.
Reply with strict JSON only: {"label": "...", "confidence": 0.0-1.0, "rationale": "..."}.`

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/catalog"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
	"github.com/tarsy-labs/storefront-coe/pkg/retrieval"
	"github.com/tarsy-labs/storefront-coe/pkg/styles"
)

// maxSearchResults caps how many products Retriever formats into a reply
// (§4.6.1: "format up to 10 projections").
const maxSearchResults = 10

// transferThreshold is the result-count boundary below which Retriever
// hands off to Sales for persuasion (§4.6.1: "If <=5 results, transfer to
// Sales").
const transferThreshold = 5

const retrievalTopK = 2

// Retriever answers `search` and `info` (FAQ) intents (§4.6.1).
type Retriever struct {
	catalog   catalog.Catalog
	retriever retrieval.Retriever
	logger    *slog.Logger
}

func NewRetriever(cat catalog.Catalog, r retrieval.Retriever, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{catalog: cat, retriever: r, logger: logger}
}

func (r *Retriever) Name() Name { return NameRetriever }

func (r *Retriever) CanHandle(session *models.Session) bool {
	return session.LastIntent == models.IntentSearch || session.LastIntent == models.IntentInfo
}

func (r *Retriever) Process(ctx context.Context, session *models.Session) AgentResponse {
	if session.LastIntent == models.IntentInfo && looksLikeFAQ(session.RecentUtterance) {
		return r.processFAQ(ctx, session)
	}
	return r.processSearch(ctx, session)
}

func looksLikeFAQ(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, word := range styles.FAQTopicWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func (r *Retriever) processSearch(ctx context.Context, session *models.Session) AgentResponse {
	style := session.Style

	tokens := catalog.Tokenize(session.RecentUtterance)
	if len(tokens) == 0 {
		return AgentResponse{
			Agent:          NameRetriever,
			ReplyText:      styles.Render(style, styles.KindSearchClarify),
			ShouldTransfer: true,
			TransferTo:     NameSales,
		}
	}

	products, err := r.catalog.SearchByKeywords(ctx, strings.Join(tokens, " "), maxSearchResults*2)
	if err != nil {
		r.logger.Warn("retriever: search failed", "error", err)
		resp := AgentResponse{
			Agent:          NameRetriever,
			ReplyText:      styles.Render(style, styles.KindSearchError),
			ShouldTransfer: true,
			TransferTo:     NameSales,
		}
		return errorMetadata(resp, string(apperrors.KindOf(err)))
	}

	seen := make(map[string]bool, len(products))
	var available []models.ProductProjection
	for _, p := range products {
		if seen[p.ID] || !p.Available() {
			continue
		}
		seen[p.ID] = true
		available = append(available, p)
	}

	if len(available) > maxSearchResults {
		available = available[:maxSearchResults]
	}

	session.LastSearchResults = available

	greeting := styles.Render(style, styles.KindSearchGreeting)
	reply := greeting + "\n" + formatProducts(available)

	resp := AgentResponse{Agent: NameRetriever, ReplyText: reply}
	if len(available) <= transferThreshold {
		resp.ShouldTransfer = true
		resp.TransferTo = NameSales
	}
	return resp
}

func formatProducts(products []models.ProductProjection) string {
	var sb strings.Builder
	for i, p := range products {
		if i > 0 {
			sb.WriteString("\n")
		}
		stockHint := "disponible"
		if p.QuantityAvailable <= 5 {
			stockHint = fmt.Sprintf("quedan %d", p.QuantityAvailable)
		}
		fmt.Fprintf(&sb, "- %s: $%s (%s)", p.Name, p.FinalPrice.StringFixed(2), stockHint)
	}
	return sb.String()
}

func (r *Retriever) processFAQ(ctx context.Context, session *models.Session) AgentResponse {
	style := session.Style

	if r.retriever == nil {
		return AgentResponse{
			Agent:          NameRetriever,
			ReplyText:      styles.Render(style, styles.KindFAQMiss),
			ShouldTransfer: true,
			TransferTo:     NameSales,
		}
	}

	passages, err := r.retriever.Retrieve(ctx, session.RecentUtterance, retrievalTopK)
	if err != nil || len(passages) == 0 {
		if err != nil {
			r.logger.Warn("retriever: faq retrieval failed", "error", err)
		}
		resp := AgentResponse{
			Agent:          NameRetriever,
			ReplyText:      styles.Render(style, styles.KindFAQMiss),
			ShouldTransfer: true,
			TransferTo:     NameSales,
		}
		if err != nil {
			resp = errorMetadata(resp, string(apperrors.KindOf(err)))
		}
		return resp
	}

	best, _ := retrieval.BestPassage(passages)
	reply := styles.Render(style, styles.KindFAQLeadIn) + " " + best

	return AgentResponse{Agent: NameRetriever, ReplyText: reply}
}

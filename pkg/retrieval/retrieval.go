// Package retrieval wraps the external semantic similarity service used by
// Retriever and Sales to answer FAQ-style questions (§4.6.1, §4.6.2).
package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

// Passage is one retrieved FAQ/knowledge-base snippet.
type Passage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Retriever queries the external service for the top-k passages relevant to
// a query. It never blocks past the caller's context deadline.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Passage, error)
}

// Config configures the HTTP retrieval client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPRetriever calls the configured retrieval endpoint over resty.
type HTTPRetriever struct {
	http *resty.Client
}

func NewHTTPRetriever(cfg Config) *HTTPRetriever {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &HTTPRetriever{http: client}
}

type retrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type retrieveResponse struct {
	Passages []Passage `json:"passages"`
}

func (r *HTTPRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = 3
	}

	var result retrieveResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(retrieveRequest{Query: query, TopK: topK}).
		SetResult(&result).
		Post("/retrieve")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "retrieval query", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apperrors.New(apperrors.KindTransientDependency,
			fmt.Sprintf("retrieval query: status %d", resp.StatusCode()))
	}
	return result.Passages, nil
}

// answerPrefix is stripped from a retrieved passage before it is wrapped in
// a style-appropriate lead-in, per §4.6.1.
const answerPrefix = "Answer:"

// BestPassage returns the highest-scoring passage's text with any leading
// "Answer:" prefix stripped, or ok=false if passages is empty.
func BestPassage(passages []Passage) (text string, ok bool) {
	if len(passages) == 0 {
		return "", false
	}
	best := passages[0]
	for _, p := range passages[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	text = strings.TrimSpace(best.Text)
	if stripped, found := strings.CutPrefix(text, answerPrefix); found {
		text = strings.TrimSpace(stripped)
	}
	return text, true
}

// Package llmprovider wraps the LLM collaborator used by the Classifier and
// by every Agent's message generation step (§4.5, §4.6). It exposes a single
// narrow Provider contract so callers never see SDK types directly.
package llmprovider

import "context"

// CompletionRequest is one request/response round trip against the
// configured model. System carries the task framing (closed-label
// enumeration, style samples, product context); User carries the turn's
// utterance or generation prompt.
type CompletionRequest struct {
	System    string
	User      string
	MaxTokens int
}

// Provider is the narrow contract the Classifier and Agents depend on.
// Implementations must respect ctx's deadline; they never retry past it.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Package agents implements the three request-scoped handlers named in
// §4.6: Retriever (keyword search + FAQ), Sales (recommendation +
// persuasion), Checkout (staged order capture). Each is a single-shot
// classify-then-respond handler, not an iterating tool-caller — modeled in
// shape on the teacher's pkg/agent/agent.go + base_agent.go (execute,
// translate errors to a result value, never panic/propagate) but built
// fresh since no teacher file matches sales dialogue one-for-one.
package agents

import (
	"context"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Name is the closed set of routable agent tags (§4.6, §4.7).
type Name string

const (
	NameRetriever Name = "retriever"
	NameSales     Name = "sales"
	NameCheckout  Name = "checkout"
)

// AgentResponse is the uniform result every Agent produces. Orchestrator
// reads ShouldTransfer/TransferTo to drive the bounded handoff loop (§4.7).
type AgentResponse struct {
	Agent         Name
	ReplyText     string
	ShouldTransfer bool
	TransferTo    Name
	Metadata      map[string]any
}

// Agent is the common contract every specialized handler implements.
// CanHandle is advisory only; the Orchestrator routes by name, not by
// polling CanHandle (§4.6).
type Agent interface {
	Name() Name
	CanHandle(session *models.Session) bool
	Process(ctx context.Context, session *models.Session) AgentResponse
}

// withMetadata sets a single metadata key, allocating the map on first use.
func withMetadata(r AgentResponse, key string, value any) AgentResponse {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any, 1)
	}
	r.Metadata[key] = value
	return r
}

// errorMetadata sets metadata.error to the apperrors.Kind string, per §7
// ("metadata.error names the kind").
func errorMetadata(r AgentResponse, kind string) AgentResponse {
	return withMetadata(r, "error", kind)
}

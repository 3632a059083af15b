package llmprovider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

// AnthropicProvider implements Provider against the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicProvider builds a Provider from a resolved API key and model
// name. apiKey must already be resolved from its env indirection by
// pkg/config; this constructor does no env lookups of its own.
func NewAnthropicProvider(apiKey, model string, maxTokens int) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, apperrors.New(apperrors.KindValidationFailure, "llm api key not configured")
	}
	if model == "" {
		return nil, apperrors.New(apperrors.KindValidationFailure, "llm model not configured")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client, model: model, maxTokens: int64(maxTokens)}, nil
}

// Complete sends a single-turn message and returns the concatenated text
// blocks of the reply. The caller's context carries the operation's budget
// (5s for classification/style, 10s for message generation, per §5); this
// method does not set its own timeout.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTransientDependency, "llm completion", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	return out.String(), nil
}

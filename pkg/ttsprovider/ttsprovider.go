// Package ttsprovider wraps the external text-to-speech collaborator used to
// turn an agent's textual reply into a base64 audio data URL (§6 "Audio
// encoding"). TTS is always best-effort: callers never block a reply on it
// past its soft budget, and a failure simply means audio is omitted.
package ttsprovider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

// Provider synthesizes speech for a reply. Synthesize returns a
// data:audio/mpeg;base64,... URL on success.
type Provider interface {
	Synthesize(ctx context.Context, text, style string) (audioURL string, err error)
}

// NoopProvider is used when TTS is disabled in configuration; it always
// reports no audio without making a network call.
type NoopProvider struct{}

func (NoopProvider) Synthesize(ctx context.Context, text, style string) (string, error) {
	return "", nil
}

// HTTPProvider calls a configured external synthesis endpoint over resty,
// the same base-URL/timeout/retry client idiom used by pkg/retrieval.
type HTTPProvider struct {
	http   *resty.Client
	logger *slog.Logger
}

// Config configures the HTTP TTS client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPProvider(cfg Config, logger *slog.Logger) *HTTPProvider {
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

	return &HTTPProvider{http: client, logger: logger}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

type synthesizeResponse struct {
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type"`
}

// Synthesize posts the reply text to the external endpoint. Any error
// (timeout, non-2xx, decode failure) is returned to the caller, which per
// §5 must treat it as non-fatal and omit audio rather than fail the turn.
func (p *HTTPProvider) Synthesize(ctx context.Context, text, style string) (string, error) {
	var result synthesizeResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(synthesizeRequest{Text: text, Style: style}).
		SetResult(&result).
		Post("/synthesize")
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTransientDependency, "tts synthesize", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", apperrors.New(apperrors.KindTransientDependency,
			fmt.Sprintf("tts synthesize: status %d", resp.StatusCode()))
	}
	if result.AudioBase64 == "" {
		return "", apperrors.New(apperrors.KindTransientDependency, "tts synthesize: empty audio")
	}

	mimeType := result.MimeType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return dataURL(mimeType, result.AudioBase64), nil
}

func dataURL(mimeType, audioBase64 string) string {
	return "data:" + mimeType + ";base64," + audioBase64
}

// EncodeAudio wraps raw audio bytes as a data URL, for callers that already
// hold decoded bytes (e.g. tests) rather than a base64 string from the wire.
func EncodeAudio(mimeType string, raw []byte) string {
	return dataURL(mimeType, base64.StdEncoding.EncodeToString(raw))
}

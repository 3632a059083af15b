package llmprovider

import (
	"regexp"
	"strings"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
)

// fencedBlock matches a markdown fenced code block, with or without a
// language tag, and captures its body.
var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON recovers a bare JSON object from an LLM reply that may wrap it
// in prose or a fenced code block. It does not validate the JSON itself;
// callers decode the returned string and reject anything that fails to
// unmarshal or whose label falls outside the closed set, per §4.5.
func ExtractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.New(apperrors.KindValidationFailure, "empty llm reply")
	}

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		body := strings.TrimSpace(m[1])
		if body != "" {
			raw = body
		}
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return "", apperrors.New(apperrors.KindValidationFailure, "no json object found in llm reply")
	}
	return raw[start : end+1], nil
}

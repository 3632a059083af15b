// Package redact scrubs PII-shaped substrings (shipping address, phone,
// email) from log fields before they reach slog, so a turn's shipping
// capture step (§4.6.3) never writes raw contact details to logs.
package redact

import "regexp"

// pattern pairs a compiled regex with its replacement text, the same
// named-pattern-group idiom used for data masking elsewhere in the pack,
// scoped down to the fixed set of PII shapes this module ever logs.
type pattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

var patterns = []pattern{
	{
		name:        "email",
		regex:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		replacement: "[EMAIL_REDACTED]",
	},
	{
		name:        "phone",
		regex:       regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?(?:\(?\d{2,4}\)?[\s\-.]?){2,4}\d{2,4}`),
		replacement: "[PHONE_REDACTED]",
	},
}

// String applies every pattern to s in order and returns the redacted copy.
func String(s string) string {
	for _, p := range patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// ShippingAddress redacts an address string for logging, leaving only its
// length as a structural hint. Addresses are free text (§3) with no fixed
// shape a regex can reliably redact piecewise, so the field is replaced
// wholesale rather than pattern-matched.
func ShippingAddress(addr string) string {
	if addr == "" {
		return ""
	}
	return "[ADDRESS_REDACTED]"
}

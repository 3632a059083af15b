// Package api implements the HTTP transport layer: the GraphQL-shaped
// JSON surface of §6, the REST login/transcript surface, and /health, all
// served over Echo v5 (the framework the teacher's real pkg/api handlers
// use, not the gin import left in its throwaway cmd/tarsy/main.go).
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Role is the closed set of principal roles carried by a bearer token
// (spec.md §6: "payload carries at least {id, username, role} where role
// 1=admin, 2=customer").
const (
	RoleAdmin    = 1
	RoleCustomer = 2
)

// Principal is the decoded identity of an authenticated request.
type Principal struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     int    `json:"role"`
}

// IsAdmin reports whether the principal may act on resources it does not
// own (order lookups, cancellations).
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type tokenPayload struct {
	Principal
	Expiry int64 `json:"exp"`
}

// TokenVerifier issues and verifies bearer tokens. Real auth token
// minting/verification is explicitly out of scope (spec.md §1); the
// transport layer depends on this narrow interface rather than a concrete
// scheme so that a production verifier can be dropped in later without
// touching a single handler.
type TokenVerifier interface {
	IssueToken(p Principal) (string, error)
	VerifyToken(token string) (Principal, bool)
}

// HMACAuth is a minimal development bearer-token scheme: an HMAC-SHA256
// signed, base64url-encoded JSON payload carrying a Principal and an
// expiry. No refresh flow, no revocation list — not a production
// token-minting system, just enough to exercise the authenticated
// GraphQL surface end to end. No JWT or session-auth library appears
// anywhere in the retrieved corpus, so this is built on stdlib crypto
// rather than adopting a dependency with no grounding.
type HMACAuth struct {
	secret []byte
	ttl    time.Duration
}

func NewHMACAuth(secret []byte, ttl time.Duration) *HMACAuth {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HMACAuth{secret: secret, ttl: ttl}
}

func (a *HMACAuth) IssueToken(p Principal) (string, error) {
	if p.UserID == "" {
		return "", errors.New("principal has no user id")
	}
	payload, err := json.Marshal(tokenPayload{Principal: p, Expiry: time.Now().Add(a.ttl).Unix()})
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	sig := a.sign(encoded)
	return encoded + "." + sig, nil
}

func (a *HMACAuth) VerifyToken(token string) (Principal, bool) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return Principal{}, false
	}
	if !hmac.Equal([]byte(sig), []byte(a.sign(encoded))) {
		return Principal{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Principal{}, false
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Principal{}, false
	}
	if time.Now().Unix() > payload.Expiry {
		return Principal{}, false
	}
	return payload.Principal, true
}

func (a *HMACAuth) sign(encoded string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Package session implements SessionStore: a TTL-backed cache for Session
// and ScriptSession state, Redis-backed in production with an in-memory
// fallback for local development (mirroring the teacher's sync.RWMutex
// map-based session.Manager, generalized to a pluggable backend).
package session

import (
	"context"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// Store is the SessionStore contract used by the Orchestrator and
// ScriptPipeline. Both backends (Redis, in-memory) implement it identically.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	ExtendTTL(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)

	GetScript(ctx context.Context, sessionID string) (*models.ScriptSession, error)
	SaveScript(ctx context.Context, s *models.ScriptSession) error
	DeleteScript(ctx context.Context, sessionID string) error

	HealthCheck(ctx context.Context) error
}

const (
	sessionKeyPrefix = "session:"
	scriptKeyPrefix  = "guion_session:"
)

func sessionKey(id string) string { return sessionKeyPrefix + id }
func scriptKey(id string) string  { return scriptKeyPrefix + id }

// Config carries the TTL applied to every Save/ExtendTTL call, shared by
// both backends.
type Config struct {
	TTL time.Duration
}

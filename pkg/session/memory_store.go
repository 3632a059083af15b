package session

import (
	"context"
	"sync"
	"time"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// MemoryStore is the development-only SessionStore backend: a mutex-guarded
// map with per-entry expiry, in the shape of the teacher's session.Manager.
// It does not survive a restart and does not coordinate across replicas;
// pkg/config's validator refuses it outside dev/test environments.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memEntry
	scripts map[string]scriptEntry
}

type memEntry struct {
	session   *models.Session
	expiresAt time.Time
}

type scriptEntry struct {
	session   *models.ScriptSession
	expiresAt time.Time
}

func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		ttl:     cfg.TTL,
		entries: make(map[string]memEntry),
		scripts: make(map[string]scriptEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sess.SessionID] = memEntry{session: sess, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) ExtendTTL(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	e.expiresAt = time.Now().Add(m.ttl)
	m.entries[sessionID] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionID)
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, e := range m.entries {
		if now.Before(e.expiresAt) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) GetScript(_ context.Context, sessionID string) (*models.ScriptSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.scripts[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) SaveScript(_ context.Context, sess *models.ScriptSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scripts[sess.SessionID] = scriptEntry{session: sess, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) DeleteScript(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.scripts, sessionID)
	return nil
}

func (m *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}

// Sweep evicts every expired entry. Called periodically by pkg/sweeper.
func (m *MemoryStore) Sweep() (evicted int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			evicted++
		}
	}
	for id, e := range m.scripts {
		if now.After(e.expiresAt) {
			delete(m.scripts, id)
			evicted++
		}
	}
	return evicted
}

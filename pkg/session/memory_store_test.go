package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(Config{TTL: time.Minute})
	ctx := context.Background()

	sess := &models.Session{SessionID: "s1", Style: models.StyleNeutral}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(Config{TTL: time.Minute})
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(Config{TTL: -time.Second})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{SessionID: "expired"}))

	evicted := store.Sweep()
	assert.Equal(t, 1, evicted)

	_, err := store.Get(ctx, "expired")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestMemoryStore_ExtendTTLMissing(t *testing.T) {
	store := NewMemoryStore(Config{TTL: time.Minute})
	err := store.ExtendTTL(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

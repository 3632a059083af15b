package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/tarsy-labs/storefront-coe/pkg/apperrors"
	"github.com/tarsy-labs/storefront-coe/pkg/models"
)

// RedisStore is the production SessionStore backend, serializing Session
// and ScriptSession as JSON under the session:/guion_session: namespaces
// with a SETEX TTL per spec.md §6.
type RedisStore struct {
	client redis.Cmdable
	ttl    Config
}

func NewRedisStore(client redis.Cmdable, cfg Config) *RedisStore {
	return &RedisStore{client: client, ttl: cfg}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "session get", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "session decode", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "session encode", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.SessionID), raw, s.ttl.TTL).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "session save", err)
	}
	return nil
}

func (s *RedisStore) ExtendTTL(ctx context.Context, sessionID string) error {
	ok, err := s.client.Expire(ctx, sessionKey(sessionID), s.ttl.TTL).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "session extend ttl", err)
	}
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "session delete", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var count int
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, apperrors.Wrap(apperrors.KindTransientDependency, "session count", err)
	}
	return count, nil
}

func (s *RedisStore) GetScript(ctx context.Context, sessionID string) (*models.ScriptSession, error) {
	raw, err := s.client.Get(ctx, scriptKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransientDependency, "script session get", err)
	}
	var sess models.ScriptSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "script session decode", err)
	}
	return &sess, nil
}

func (s *RedisStore) SaveScript(ctx context.Context, sess *models.ScriptSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "script session encode", err)
	}
	if err := s.client.Set(ctx, scriptKey(sess.SessionID), raw, s.ttl.TTL).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "script session save", err)
	}
	return nil
}

func (s *RedisStore) DeleteScript(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, scriptKey(sessionID)).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "script session delete", err)
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransientDependency, "redis ping", err)
	}
	return nil
}

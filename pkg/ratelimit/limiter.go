package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/tarsy-labs/storefront-coe/pkg/config"
)

// Category names one of the three rate-limited surfaces named in §6.
type Category string

const (
	CategoryLogin   Category = "login"
	CategoryGraphQL Category = "graphql"
	CategoryHealth  Category = "health"
)

// Limiter holds one token bucket per category, each with its own
// requests-per-minute budget from configuration.
type Limiter struct {
	buckets map[Category]*TokenBucket
}

func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		buckets: map[Category]*TokenBucket{
			CategoryLogin:   NewTokenBucket(client, cfg.LoginPerMinute),
			CategoryGraphQL: NewTokenBucket(client, cfg.GraphQLPerMinute),
			CategoryHealth:  NewTokenBucket(client, cfg.HealthPerMinute),
		},
	}
}

// Allow checks the named category's bucket for principal (a user id when
// authenticated, else the remote address).
func (l *Limiter) Allow(ctx context.Context, category Category, principal string) (*Result, error) {
	bucket, ok := l.buckets[category]
	if !ok {
		return &Result{Allowed: true}, nil
	}
	return bucket.Allow(ctx, Key(category, principal))
}

// Key builds the Redis key for a category/principal pair.
func Key(category Category, principal string) string {
	return "ratelimit:" + string(category) + ":" + principal
}

// Package ratelimit implements the Redis token-bucket rate limiting used by
// the transport layer for login, GraphQL, and health endpoints (§6),
// keyed by user id or remote address.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucket is a Redis-backed token bucket shared across replicas. The
// read-modify-write is done atomically server-side via a Lua script, so
// concurrent requests for the same key never double-spend a token.
type TokenBucket struct {
	client     redis.Cmdable
	bucketSize int64
	refillRate float64 // tokens per second
}

// Result is the rate limiting decision for one request.
type Result struct {
	Allowed    bool
	Remaining  int64
	Limit      int64
	RetryAfter time.Duration
}

var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local bucket_size = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local tokens = tonumber(redis.call('HGET', key, 'tokens'))
local last_refill = tonumber(redis.call('HGET', key, 'last_refill'))

if tokens == nil then
    tokens = bucket_size
    last_refill = now
end

local elapsed = now - last_refill
local tokens_to_add = elapsed * refill_rate
tokens = math.min(bucket_size, tokens + tokens_to_add)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

local retry_after = 0
if allowed == 0 then
    retry_after = math.ceil((1 - tokens) / refill_rate)
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.floor(tokens), retry_after}
`)

// NewTokenBucket builds a limiter allowing perMinute requests per key,
// refilled continuously at perMinute/60 tokens per second.
func NewTokenBucket(client redis.Cmdable, perMinute int) *TokenBucket {
	return &TokenBucket{
		client:     client,
		bucketSize: int64(perMinute),
		refillRate: float64(perMinute) / 60.0,
	}
}

// Allow checks and consumes a token for key, returning the decision.
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Result, error) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)

	result, err := tokenBucketScript.Run(ctx, tb.client, []string{key},
		tb.bucketSize,
		tb.refillRate,
		now,
	).Int64Slice()
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:    result[0] == 1,
		Remaining:  result[1],
		Limit:      tb.bucketSize,
		RetryAfter: time.Duration(result[2]) * time.Second,
	}, nil
}

// IsHealthy reports whether the backing Redis connection is reachable.
func (tb *TokenBucket) IsHealthy(ctx context.Context) bool {
	return tb.client.Ping(ctx).Err() == nil
}

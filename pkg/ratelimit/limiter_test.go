package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_NamespacesByCategoryAndPrincipal(t *testing.T) {
	assert.Equal(t, "ratelimit:login:user-1", Key(CategoryLogin, "user-1"))
	assert.Equal(t, "ratelimit:health:203.0.113.5", Key(CategoryHealth, "203.0.113.5"))
}

func TestNewTokenBucket_RefillRateIsPerMinuteOverSixty(t *testing.T) {
	tb := NewTokenBucket(nil, 30)
	assert.Equal(t, int64(30), tb.bucketSize)
	assert.Equal(t, 0.5, tb.refillRate)
}

package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockresearch/pkg/errors"
)

func TestTokenBucketLimiter_Allow(t *testing.T) {
	// 60 req/min, burst 2
	limiter := NewTokenBucketLimiter("groq", 60, 2)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
	assert.Equal(t, 60.0, limiter.Limit())
}

func TestTokenBucketLimiter_ContextCancellation(t *testing.T) {
	// 6 req/min means the second token arrives after ten seconds
	limiter := NewTokenBucketLimiter("groq", 6, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)

	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "groq", rlErr.Provider)
}

func TestTokenBucketLimiter_DefaultBurst(t *testing.T) {
	limiter := NewTokenBucketLimiter("groq", 30, 0)

	// 10% of 30 is 3
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "request %d", i)
	}
	assert.False(t, limiter.Allow())
}

func TestNewRateLimiter(t *testing.T) {
	assert.IsType(t, &NoOpLimiter{}, NewRateLimiter("groq", 0))
	assert.IsType(t, &TokenBucketLimiter{}, NewRateLimiter("groq", 30))

	noop := NewNoOpLimiter()
	assert.NoError(t, noop.Wait(context.Background()))
	assert.True(t, noop.Allow())
	assert.Equal(t, -1.0, noop.Limit())
}

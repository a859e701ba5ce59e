package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A nil client means no Redis is configured; every check must pass and every
// release must be a silent no-op.
func TestNilClientDisablesLimiting(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		allowed, err := CheckAndSet(ctx, nil, userID, "post", time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	ttl, err := TTL(ctx, nil, userID, "post")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	require.NoError(t, Clear(ctx, nil, userID, "post"))
}

func TestRateLimitErrorMessage(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 3 * time.Second}
	assert.Equal(t, "slow down", err.Error())
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ratelimit"
)

func TestMemory_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := ratelimit.NewMemory(ctx, 1, 2)

	frozen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return frozen })

	t.Run("burst_then_reject", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			allowed, err := limiter.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, allowed, "request %d", i)
		}

		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("keys_are_independent", func(t *testing.T) {
		allowed, err := limiter.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("tokens_refill", func(t *testing.T) {
		limiter.SetClock(func() time.Time { return frozen.Add(time.Second) })

		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestMemory_EvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := ratelimit.NewMemory(ctx, 10, 10)

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return start })

	_, _ = limiter.Allow(ctx, "idle")
	require.Equal(t, 1, limiter.Len())

	limiter.SetClock(func() time.Time { return start.Add(constants.RateLimitClientTTL + time.Second) })
	_, _ = limiter.Allow(ctx, "active")
	limiter.EvictIdle()

	assert.Equal(t, 1, limiter.Len())
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/libris/internal/platform/constants"
)

// Redis is a fixed-window limiter backed by INCR + EXPIRE.
//
// Every replica pointed at the same Redis shares the counters, so the limit
// is global rather than per process.
type Redis struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis builds a [Redis] limiter allowing limit requests per window.
func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow implements [Limiter].
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := r.key(key)

	pipe := r.client.TxPipeline()
	counter := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis pipeline failed: %w", err)
	}

	return counter.Val() <= r.limit, nil
}

// key namespaces the counter by client and by the current window slot.
func (r *Redis) key(client string) string {
	slot := r.now().UnixNano() / int64(r.window)
	return constants.RedisPrefixRateLimit + client + ":" + strconv.FormatInt(slot, 10)
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/libris/internal/platform/constants"
)

type memoryClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is an in-process token bucket limiter keyed by client.
type Memory struct {
	mu      sync.Mutex
	clients map[string]*memoryClient
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

// NewMemory builds a [Memory] limiter and starts a janitor goroutine that
// evicts idle clients until ctx is cancelled.
func NewMemory(ctx context.Context, rps float64, burst int) *Memory {
	limiter := &Memory{
		clients: make(map[string]*memoryClient),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}

	go limiter.janitor(ctx)

	return limiter
}

// Allow implements [Limiter]. It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, found := m.clients[key]
	if !found {
		client = &memoryClient{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.clients[key] = client
	}

	now := m.now()
	client.lastSeen = now

	return client.limiter.AllowN(now, 1), nil
}

// Len returns the number of tracked clients.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// evictIdle removes every client not seen within [constants.RateLimitClientTTL].
func (m *Memory) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, client := range m.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(m.clients, key)
		}
	}
}

func (m *Memory) janitor(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-ctx.Done():
			return
		}
	}
}

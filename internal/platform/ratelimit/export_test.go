// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import "time"

// SetClock replaces the limiter clock in tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// EvictIdle exposes the janitor sweep to tests.
func (m *Memory) EvictIdle() { m.evictIdle() }

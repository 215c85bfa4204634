// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit decides whether a client may issue another request.

Two implementations share the [Limiter] contract:

  - Memory: a token bucket per key (golang.org/x/time/rate), local to the process.
  - Redis: a fixed one-second window per key, shared by every replica.

The HTTP layer only depends on [Limiter]; cmd/api picks the implementation
based on whether REDIS_URL is configured.
*/
package ratelimit

import "context"

// Limiter reports whether the client identified by key may proceed.
//
// An error means the decision could not be made (e.g. the backing store is
// unreachable); callers decide whether to fail open or closed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey declares the context keys set by the HTTP middleware chain.
//
// The key type is unexported, so no other package can read or overwrite
// these values except through [ctxutil].
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyLogger carries the per-request [*log/slog.Logger] (request id, method, path, ip).
	KeyLogger key = "logger"
)

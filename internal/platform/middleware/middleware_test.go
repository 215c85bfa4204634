// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/middleware"
	"github.com/taibuivan/libris/internal/platform/respond"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

// # Request Tracing

func TestRequestID(t *testing.T) {
	t.Run("generates_when_missing", func(t *testing.T) {
		var seen string
		handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetRequestID(request.Context())
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("propagates_client_id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "req-42")

		recorder := httptest.NewRecorder()
		middleware.RequestID()(okHandler).ServeHTTP(recorder, request)

		assert.Equal(t, "req-42", recorder.Header().Get(constants.HeaderXRequestID))
	})
}

// # Rate Limiting

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *stubLimiter
		wantStatus int
	}{
		{"allowed", &stubLimiter{allowed: true}, http.StatusOK},
		{"rejected", &stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter_error_fails_open", &stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/book", nil)
			request.Header.Set(constants.HeaderXRealIP, "203.0.113.9")

			recorder := httptest.NewRecorder()
			middleware.RateLimit(tt.limiter)(okHandler).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, []string{"203.0.113.9"}, tt.limiter.keys)

			if tt.wantStatus == http.StatusTooManyRequests {
				var body respond.ErrorEnvelope
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, apperr.CodeRateLimited, body.Code)
				assert.Equal(t, "1", recorder.Header().Get(constants.HeaderRetryAfter))
			}
		})
	}
}

// # Reliability & Safety

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/book", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.InternalMessage, body.Message)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

// # Cross-Origin Resource Sharing

type corsConfig struct {
	dev    bool
	suffix string
}

func (c corsConfig) IsDevelopment() bool  { return c.dev }
func (c corsConfig) OriginSuffix() string { return c.suffix }

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         corsConfig
		origin      string
		wantAllowed bool
	}{
		{"development_allows_any", corsConfig{dev: true}, "http://localhost:3000", true},
		{"suffix_match", corsConfig{suffix: ".libris.example"}, "https://app.libris.example", true},
		{"suffix_mismatch", corsConfig{suffix: ".libris.example"}, "https://evil.example", false},
		{"no_suffix_configured", corsConfig{}, "https://app.libris.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/book", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)

			recorder := httptest.NewRecorder()
			middleware.CORS(tt.cfg)(okHandler).ServeHTTP(recorder, request)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	t.Run("preflight_short_circuits", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodOptions, "/book", nil)
		request.Header.Set(constants.HeaderOrigin, "http://localhost:3000")

		recorder := httptest.NewRecorder()
		middleware.CORS(corsConfig{dev: true})(okHandler).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

// # Middleware Helpers

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"x_real_ip", map[string]string{constants.HeaderXRealIP: "198.51.100.1"}, "10.0.0.1:1234", "198.51.100.1"},
		{"x_forwarded_for_first_hop", map[string]string{constants.HeaderXForwardedFor: "198.51.100.2, 10.0.0.2"}, "10.0.0.1:1234", "198.51.100.2"},
		{"remote_addr", nil, "10.0.0.1:1234", "10.0.0.1"},
		{"remote_addr_without_port", nil, "10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remote
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}

			assert.Equal(t, tt.want, middleware.RealIP(request))
		})
	}
}

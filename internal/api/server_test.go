// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/api"
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/sqlite"
)

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })
	require.NoError(t, sqlite.Migrate(db, book.Models()...))

	liveness, readiness := api.NewHealthHandlers(deps, logger)

	cfg := &config.Config{ServerPort: "0", Environment: "development"}
	server := api.NewServer(cfg, logger, allowAll{}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      book.NewHandler(book.NewService(book.NewSQLiteTransactor(db), logger)),
	})

	return server.Handler()
}

func TestServer_Health(t *testing.T) {
	healthy := &api.HealthCheck{Name: "sqlite", Check: func(context.Context) error { return nil }}
	failing := &api.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name       string
		deps       api.HealthDependencies
		path       string
		wantStatus int
		wantBody   string
	}{
		{"liveness", api.HealthDependencies{}, "/health", http.StatusOK, "ok"},
		{"ready", api.HealthDependencies{Database: healthy}, "/ready", http.StatusOK, "ready"},
		{"degraded", api.HealthDependencies{Database: healthy, Cache: failing}, "/ready", http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			newTestServer(t, tt.deps).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body[constants.FieldStatus])
		})
	}
}

func TestServer_BookRoutesAreMounted(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	create := httptest.NewRequest(http.MethodPost, "/book",
		strings.NewReader(`{"isbn":"9780134190440","title":"Go","authorNames":["Donovan"],"publicationYear":2015}`))
	created := httptest.NewRecorder()
	handler.ServeHTTP(created, create)

	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.NotEmpty(t, created.Header().Get(constants.HeaderXRequestID))

	fetched := httptest.NewRecorder()
	handler.ServeHTTP(fetched, httptest.NewRequest(http.MethodGet, "/book/9780134190440", nil))

	assert.Equal(t, http.StatusOK, fetched.Code)
	assert.JSONEq(t, `{"isbn":"9780134190440","title":"Go","authorNames":["Donovan"],"publicationYear":2015}`, fetched.Body.String())
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/respond"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	service, _ := newTestService(t)

	router := chi.NewRouter()
	router.Mount("/book", book.NewHandler(service).Routes())
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBooks(t *testing.T, recorder *httptest.ResponseRecorder) []book.Response {
	t.Helper()

	var books []book.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &books))
	return books
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

// TestHandler_Scenario walks the create, filter, patch, filter flow end to end.
func TestHandler_Scenario(t *testing.T) {
	router := newTestRouter(t)

	created := do(t, router, http.MethodPost, "/book",
		`{"isbn":"978-3-16-148410-0","title":"Algorithms","authorNames":["B","A"],"publicationYear":2009}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.Equal(t, "/book/978-3-16-148410-0", created.Header().Get("Location"))
	assert.JSONEq(t,
		`{"isbn":"978-3-16-148410-0","title":"Algorithms","authorNames":["A","B"],"publicationYear":2009}`,
		created.Body.String())

	byA := do(t, router, http.MethodGet, "/book?authorName=A", "")
	require.Equal(t, http.StatusOK, byA.Code)
	books := decodeBooks(t, byA)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"A", "B"}, books[0].AuthorNames)

	patched := do(t, router, http.MethodPatch, "/book/978-3-16-148410-0", `{"authorNames":["C"]}`)
	require.Equal(t, http.StatusOK, patched.Code, patched.Body.String())
	assert.JSONEq(t,
		`{"isbn":"978-3-16-148410-0","title":"Algorithms","authorNames":["C"],"publicationYear":2009}`,
		patched.Body.String())

	byAAgain := do(t, router, http.MethodGet, "/book?authorName=A", "")
	require.Equal(t, http.StatusOK, byAAgain.Code)
	assert.JSONEq(t, `[]`, byAAgain.Body.String())

	byC := do(t, router, http.MethodGet, "/book?authorName=C", "")
	require.Len(t, decodeBooks(t, byC), 1)
}

func TestHandler_StatusMapping(t *testing.T) {
	router := newTestRouter(t)

	seeded := do(t, router, http.MethodPost, "/book",
		`{"isbn":"9780134190440","title":"The Go Programming Language","authorNames":["Alan Donovan"],"publicationYear":2015}`)
	require.Equal(t, http.StatusCreated, seeded.Code, seeded.Body.String())

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"get_existing", http.MethodGet, "/book/9780134190440", "", http.StatusOK, ""},
		{"get_missing", http.MethodGet, "/book/9780131103627", "", http.StatusNotFound, "Book with ISBN 9780131103627 was not found"},
		{"get_malformed_isbn", http.MethodGet, "/book/abc", "", http.StatusBadRequest, "Validation failed"},
		{"list_all", http.MethodGet, "/book", "", http.StatusOK, ""},
		{
			"list_author_and_range", http.MethodGet, "/book?authorName=X&rangeStart=1&rangeEnd=2", "",
			http.StatusBadRequest, "Only one of author or year range query can be specified",
		},
		{
			"list_empty_author_and_range", http.MethodGet, "/book?authorName=&rangeStart=2000&rangeEnd=2020", "",
			http.StatusBadRequest, "Only one of author or year range query can be specified",
		},
		{
			"list_half_range", http.MethodGet, "/book?rangeStart=2000", "",
			http.StatusBadRequest, "Both rangeStart and rangeEnd must be provided for year range query",
		},
		{
			"list_non_integer_range", http.MethodGet, "/book?rangeStart=abc&rangeEnd=2000", "",
			http.StatusBadRequest, "Invalid request body or parameter - try again",
		},
		{
			"create_duplicate", http.MethodPost, "/book",
			`{"isbn":"9780134190440","title":"Again","authorNames":["X"],"publicationYear":2015}`,
			http.StatusConflict, "Book with this ISBN already exists",
		},
		{
			"create_malformed_json", http.MethodPost, "/book", `{"isbn":`,
			http.StatusBadRequest, "Invalid request body or parameter - try again",
		},
		{
			"create_unknown_field", http.MethodPost, "/book",
			`{"isbn":"9780131103627","title":"C","authorNames":["K"],"publicationYear":1988,"pages":272}`,
			http.StatusBadRequest, "Invalid request body or parameter - try again",
		},
		{
			"create_invalid_fields", http.MethodPost, "/book",
			`{"isbn":"9780131103627","title":"","authorNames":[],"publicationYear":1988}`,
			http.StatusBadRequest, "Validation failed",
		},
		{
			"patch_missing", http.MethodPatch, "/book/9780131103627", `{"title":"X"}`,
			http.StatusNotFound, "Book with ISBN 9780131103627 was not found",
		},
		{"delete_missing", http.MethodDelete, "/book/9780131103627", "", http.StatusNotFound, "Book with ISBN 9780131103627 was not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(t, router, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
			if tt.message != "" {
				envelope := decodeError(t, recorder)
				assert.Equal(t, tt.status, envelope.Status)
				assert.Equal(t, tt.message, envelope.Message)
			}
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	router := newTestRouter(t)

	created := do(t, router, http.MethodPost, "/book",
		`{"isbn":"9780262033848","title":"SICP","authorNames":["Abelson","Sussman"],"publicationYear":1985}`)
	require.Equal(t, http.StatusCreated, created.Code)

	deleted := do(t, router, http.MethodDelete, "/book/9780262033848", "")
	assert.Equal(t, http.StatusOK, deleted.Code)
	assert.Empty(t, deleted.Body.String())

	missing := do(t, router, http.MethodGet, "/book/9780262033848", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	router := newTestRouter(t)

	recorder := do(t, router, http.MethodGet, "/book", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, recorder.Body.String())
}

func TestHandler_ListEmptyAuthorNameMatchesNothing(t *testing.T) {
	router := newTestRouter(t)

	seeded := do(t, router, http.MethodPost, "/book",
		`{"isbn":"9780134190440","title":"The Go Programming Language","authorNames":["Alan Donovan"],"publicationYear":2015}`)
	require.Equal(t, http.StatusCreated, seeded.Code, seeded.Body.String())

	recorder := do(t, router, http.MethodGet, "/book?authorName=", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, recorder.Body.String())
}

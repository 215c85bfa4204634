// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taibuivan/libris/internal/core/author"
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/sqlite"
)

// Valid ISBN-13 values used across the suite.
const (
	isbnTAOCP  = "978-3-16-148410-0"
	isbnGoPL   = "9780134190440"
	isbnKandR  = "9780131103627"
	isbnSICP   = "9780262033848"
	isbnGoF    = "9780201633610"
	isbnUnused = "9780596007126"
)

var fixedNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a [book.Service] to a fresh SQLite file.
func newTestService(t *testing.T) (*book.Service, *gorm.DB) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"), discardLogger(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	require.NoError(t, sqlite.Migrate(db, book.Models()...))

	service := book.NewService(book.NewSQLiteTransactor(db), discardLogger())
	service.SetClock(func() time.Time { return fixedNow })

	return service, db
}

func countAuthors(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&author.Record{}).Count(&count).Error)
	return count
}

func countLinks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&book.LinkRecord{}).Count(&count).Error)
	return count
}

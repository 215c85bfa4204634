// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package book_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/author"
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/migration"
	"github.com/taibuivan/libris/internal/platform/postgres"
	"github.com/taibuivan/libris/pkg/pointer"
)

var pgPool *pgxpool.Pool

func TestMain(m *testing.M) {
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not construct pool: %s", err)
	}

	if err := dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not connect to docker: %s", err)
	}

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=libris",
			"POSTGRES_DB=libris",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres: %s", err)
	}

	// Hard kill the container if the suite hangs.
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("postgres://libris:secret@%s/libris?sslmode=disable", resource.GetHostPort("5432/tcp"))
	logger := discardLogger()

	dockerPool.MaxWait = 120 * time.Second
	if err := dockerPool.Retry(func() error {
		pgPool, err = postgres.NewPool(context.Background(), dsn, logger)
		return err
	}); err != nil {
		log.Fatalf("could not connect to postgres: %s", err)
	}

	if err := migration.RunUp(dsn, "../../../data/migrations", logger); err != nil {
		log.Fatalf("could not migrate: %s", err)
	}

	code := m.Run()

	pgPool.Close()

	// You can't defer this because os.Exit doesn't care for defer
	if err := dockerPool.Purge(resource); err != nil {
		log.Fatalf("could not purge postgres: %s", err)
	}

	os.Exit(code)
}

func newPostgresService(t *testing.T) *book.Service {
	t.Helper()

	_, err := pgPool.Exec(context.Background(), `TRUNCATE book_author, book, author RESTART IDENTITY`)
	require.NoError(t, err)

	service := book.NewService(book.NewPostgresTransactor(pgPool), discardLogger())
	service.SetClock(func() time.Time { return fixedNow })
	return service
}

func TestPostgres_CatalogLifecycle(t *testing.T) {
	ctx := context.Background()
	service := newPostgresService(t)

	seed(t, service, isbnKandR, "The C Programming Language", 1988, "Brian Kernighan", "Dennis Ritchie")
	seed(t, service, isbnGoPL, "The Go Programming Language", 2015, "Alan Donovan", "Brian Kernighan")

	t.Run("author_filter_keeps_full_set", func(t *testing.T) {
		books, err := service.FindMany(ctx, book.Filter{AuthorName: pointer.To("Alan Donovan")})
		require.NoError(t, err)

		require.Len(t, books, 1)
		assert.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, books[0].ToResponse().AuthorNames)
	})

	t.Run("range_and_order", func(t *testing.T) {
		books, err := service.FindMany(ctx, book.Filter{RangeStart: pointer.To(1980), RangeEnd: pointer.To(2020)})
		require.NoError(t, err)
		assert.Equal(t, []string{isbnKandR, isbnGoPL}, isbns(books))
	})

	t.Run("duplicate_isbn_conflicts", func(t *testing.T) {
		_, err := service.Create(ctx, book.CreateRequest{
			ISBN: isbnKandR, Title: "Copy", AuthorNames: []string{"Mallory"}, PublicationYear: 1990,
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

		_, err = author.NewPostgresRepository(pgPool).FindByName(ctx, "Mallory")
		assert.Error(t, err)
	})

	t.Run("patch_authors_then_delete", func(t *testing.T) {
		updated, err := service.Update(ctx, isbnGoPL, book.Patch{AuthorNames: &[]string{"Rob Pike"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Rob Pike"}, updated.ToResponse().AuthorNames)

		require.NoError(t, service.Delete(ctx, isbnGoPL))

		_, err = service.FindByISBN(ctx, isbnGoPL)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		_, err = author.NewPostgresRepository(pgPool).FindByName(ctx, "Alan Donovan")
		assert.NoError(t, err)
	})
}

// TestPostgres_ConcurrentAuthorCreation races many books onto the same new
// author; every create must succeed and share one author row.
func TestPostgres_ConcurrentAuthorCreation(t *testing.T) {
	ctx := context.Background()
	service := newPostgresService(t)

	candidates := []string{isbnTAOCP, isbnGoPL, isbnKandR, isbnSICP, isbnGoF, isbnUnused}

	var wg sync.WaitGroup
	errs := make([]error, len(candidates))
	for i, isbn := range candidates {
		wg.Add(1)
		go func(i int, isbn string) {
			defer wg.Done()
			_, errs[i] = service.Create(ctx, book.CreateRequest{
				ISBN: isbn, Title: "Shared", AuthorNames: []string{"Prolific Writer"}, PublicationYear: 2000,
			})
		}(i, isbn)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, candidates[i])
	}

	var authors int
	require.NoError(t, pgPool.QueryRow(ctx, `SELECT count(*) FROM author`).Scan(&authors))
	assert.Equal(t, 1, authors)
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/libris/internal/core/author"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/internal/platform/validate"
	isbnpkg "github.com/taibuivan/libris/pkg/isbn"
	"github.com/taibuivan/libris/pkg/pointer"
	"github.com/taibuivan/libris/pkg/textnorm"
	"github.com/taibuivan/libris/pkg/uuid"
)

// Client-facing messages that are part of the HTTP contract.
const (
	msgISBNTaken          = "Book with this ISBN already exists"
	msgFilterExclusive    = "Only one of author or year range query can be specified"
	msgRangeIncomplete    = "Both rangeStart and rangeEnd must be provided for year range query"
	msgAuthorNameRequired = "At least one author name is required"
)

// # Service Layer

// Service orchestrates the catalog's business rules.
//
// Every public method runs in exactly one transaction; authors are resolved
// through a fresh [author.Resolver] bound to that transaction.
type Service struct {
	transactor Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(transactor Transactor, logger *slog.Logger) *Service {
	return &Service{
		transactor: transactor,
		logger:     logger,
		now:        time.Now,
	}
}

// # Book Lookups

/*
FindByISBN fetches a single book with its full author set.

Returns:
  - *Book: The hydrated book
  - error: Validation if isbn is malformed, NotFound if absent
*/
func (service *Service) FindByISBN(context context.Context, isbn string) (*Book, error) {
	isbn = strings.TrimSpace(isbn)

	validator := &validate.Validator{}
	validator.ISBN(FieldISBN, isbn)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var found *Book
	err := service.transactor.WithinTx(context, func(stores Stores) error {
		book, err := service.load(context, stores.Books, isbn)
		if err != nil {
			return err
		}
		found = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

/*
FindMany lists books ordered by ISBN, optionally filtered by author name or
by an inclusive publication year range.

Returns:
  - []*Book: Matching books, never nil
  - error: Validation if both filter kinds are set or a range is half open
*/
func (service *Service) FindMany(context context.Context, filter Filter) ([]*Book, error) {

	hasRange := filter.RangeStart != nil || filter.RangeEnd != nil

	// Presence decides exclusivity, even for an empty authorName.
	if filter.AuthorName != nil && hasRange {
		return nil, apperr.ValidationError(msgFilterExclusive)
	}
	if hasRange && (filter.RangeStart == nil || filter.RangeEnd == nil) {
		return nil, apperr.ValidationError(msgRangeIncomplete)
	}

	// A blank name still filters; no author is ever stored blank.
	if filter.AuthorName != nil {
		filter.AuthorName = pointer.To(textnorm.String(*filter.AuthorName))
	}

	books := []*Book{}
	err := service.transactor.WithinTx(context, func(stores Stores) error {
		listed, err := stores.Books.List(context, filter)
		if err != nil {
			return err
		}
		books = append(books, listed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// # Book Management

/*
Create validates the request, resolves its authors and stores a new book.

Description: The ISBN is checked before any author is created. A unique
violation on insert (a concurrent create of the same ISBN) is reported the
same way and rolls back the whole transaction, authors included.

Returns:
  - *Book: The persisted book
  - error: Validation, or Conflict if the ISBN is taken
*/
func (service *Service) Create(context context.Context, input CreateRequest) (*Book, error) {
	isbn := strings.TrimSpace(input.ISBN)
	title := textnorm.String(input.Title)

	validator := &validate.Validator{}
	validator.Required(FieldISBN, isbn)
	if isbn != "" {
		validator.ISBN(FieldISBN, isbn)
	}
	validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, MaxTitleLength)
	service.validateAuthorNames(validator, input.AuthorNames)
	service.validateYear(validator, input.PublicationYear)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	var created *Book
	err := service.transactor.WithinTx(context, func(stores Stores) error {
		if err := service.ensureISBNFree(context, stores.Books, isbn); err != nil {
			return err
		}

		authors, err := author.NewResolver(stores.Authors, service.logger).Resolve(context, input.AuthorNames)
		if err != nil {
			return err
		}

		now := service.now().UTC()
		book := &Book{
			ID:              uuid.New(),
			ISBN:            isbn,
			Title:           title,
			PublicationYear: input.PublicationYear,
			Authors:         derefAuthors(authors),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := stores.Books.Create(context, book); err != nil {
			return conflictOnDuplicate(err)
		}

		created = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_created",
		slog.String("isbn", created.ISBN),
		slog.Int("authors", len(created.Authors)),
	)
	return created, nil
}

/*
Update applies a partial update to the book identified by isbn.

Description: Absent fields are left untouched. A present author name list
replaces every association of the book; authors it no longer references are
kept. A present ISBN re-keys the book and must not collide with another.

Returns:
  - *Book: The fully updated book
  - error: Validation, NotFound, or Conflict on an ISBN collision
*/
func (service *Service) Update(context context.Context, isbn string, patch Patch) (*Book, error) {
	isbn = strings.TrimSpace(isbn)

	validator := &validate.Validator{}
	if patch.ISBN != nil {
		patch.ISBN = pointer.To(strings.TrimSpace(*patch.ISBN))
		validator.ISBN(FieldISBN, *patch.ISBN)
	}
	if patch.Title != nil {
		patch.Title = pointer.To(textnorm.String(*patch.Title))
		validator.Required(FieldTitle, *patch.Title).MaxLen(FieldTitle, *patch.Title, MaxTitleLength)
	}
	if patch.AuthorNames != nil {
		service.validateAuthorNames(validator, *patch.AuthorNames)
	}
	if patch.PublicationYear != nil {
		service.validateYear(validator, *patch.PublicationYear)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	var updated *Book
	err := service.transactor.WithinTx(context, func(stores Stores) error {
		book, err := service.load(context, stores.Books, isbn)
		if err != nil {
			return err
		}

		if newISBN := pointer.Val(patch.ISBN); newISBN != "" && newISBN != book.ISBN {
			// Re-punctuating the same ISBN keeps the key and cannot collide.
			if isbnpkg.Key(newISBN) != isbnpkg.Key(book.ISBN) {
				if err := service.ensureISBNFree(context, stores.Books, newISBN); err != nil {
					return err
				}
			}
			book.ISBN = newISBN
		}

		book.Title = pointer.Fallback(patch.Title, book.Title)
		book.PublicationYear = pointer.Fallback(patch.PublicationYear, book.PublicationYear)
		book.UpdatedAt = service.now().UTC()

		if err := stores.Books.Update(context, book); err != nil {
			return conflictOnDuplicate(err)
		}

		if patch.AuthorNames != nil {
			authors, err := author.NewResolver(stores.Authors, service.logger).Resolve(context, *patch.AuthorNames)
			if err != nil {
				return err
			}

			book.Authors = derefAuthors(authors)
			if err := stores.Books.ReplaceAuthors(context, book.ID, authorIDs(book.Authors)); err != nil {
				return err
			}
		}

		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_updated",
		slog.String("isbn", isbn),
		slog.String("new_isbn", updated.ISBN),
	)
	return updated, nil
}

/*
Delete removes the book and its associations. Its authors are kept.

Returns:
  - error: NotFound if absent
*/
func (service *Service) Delete(context context.Context, isbn string) error {
	isbn = strings.TrimSpace(isbn)

	err := service.transactor.WithinTx(context, func(stores Stores) error {
		if _, err := service.load(context, stores.Books, isbn); err != nil {
			return err
		}

		if err := stores.Books.DeleteByISBN(context, isbn); err != nil {
			return notFoundAs(err, isbn)
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.WarnContext(context, "book_deleted", slog.String("isbn", isbn))
	return nil
}

// # Helpers

// load reads a book and enforces that it still has at least one author.
func (service *Service) load(context context.Context, books Repository, isbn string) (*Book, error) {
	book, err := books.FindByISBN(context, isbn)
	if err != nil {
		return nil, notFoundAs(err, isbn)
	}

	if len(book.Authors) == 0 {
		return nil, apperr.Internal(fmt.Errorf("book %s has no associated authors", isbn))
	}

	return book, nil
}

func (service *Service) ensureISBNFree(context context.Context, books Repository, isbn string) error {
	_, err := books.FindByISBN(context, isbn)
	switch {
	case err == nil:
		return apperr.Conflict(msgISBNTaken)
	case errors.Is(err, dberr.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (service *Service) validateAuthorNames(validator *validate.Validator, names []string) {
	validator.Custom(FieldAuthorNames, len(names) == 0, msgAuthorNameRequired)

	for i, name := range names {
		field := fmt.Sprintf("%s[%d]", FieldAuthorNames, i)
		normalized := textnorm.String(name)
		validator.Required(field, normalized).MaxLen(field, normalized, author.MaxNameLength)
	}
}

func (service *Service) validateYear(validator *validate.Validator, year int) {
	validator.Range(FieldPublicationYear, year, 1, service.now().Year())
}

// notFoundAs rewrites a storage not-found into the client-facing message.
func notFoundAs(err error, isbn string) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound(fmt.Sprintf("Book with ISBN %s was not found", isbn))
	}
	return err
}

// conflictOnDuplicate rewrites a unique violation on the book table.
func conflictOnDuplicate(err error) error {
	if errors.Is(err, dberr.ErrDuplicate) {
		return apperr.Conflict(msgISBNTaken)
	}
	return err
}

func derefAuthors(authors []*author.Author) []author.Author {
	result := make([]author.Author, len(authors))
	for i, a := range authors {
		result[i] = *a
	}
	return result
}

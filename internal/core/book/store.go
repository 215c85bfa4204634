// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"

	"github.com/taibuivan/libris/internal/core/author"
)

// # Book Data Access

// Repository defines the data access contract for books.
//
// Reads always return the book with its full author set, sorted by name.
type Repository interface {

	/*
		FindByISBN returns the book with the given ISBN.

		Returns:
		  - *Book: The book joined with its authors
		  - error: dberr.ErrNotFound if absent
	*/
	FindByISBN(context context.Context, isbn string) (*Book, error)

	/*
		List returns the books matching filter ordered by ISBN.

		The filter is assumed valid: either empty, an author name, or a
		complete year range (inclusive on both ends).
	*/
	List(context context.Context, filter Filter) ([]*Book, error)

	/*
		Create inserts the book row and links it to book.Authors.

		Returns:
		  - error: dberr.ErrDuplicate if the ISBN is already taken
	*/
	Create(context context.Context, book *Book) error

	/*
		Update overwrites the ISBN, title, year and update time of the row
		identified by book.ID. Author links are not touched.

		Returns:
		  - error: dberr.ErrNotFound if the row is gone, dberr.ErrDuplicate on
		    an ISBN collision
	*/
	Update(context context.Context, book *Book) error

	/*
		ReplaceAuthors swaps every association of bookID for authorIDs.
	*/
	ReplaceAuthors(context context.Context, bookID string, authorIDs []int) error

	/*
		DeleteByISBN removes the book and its association rows. Authors remain.

		Returns:
		  - error: dberr.ErrNotFound if absent
	*/
	DeleteByISBN(context context.Context, isbn string) error
}

// # Unit of Work

// Stores groups the repositories bound to one transaction.
type Stores struct {
	Books   Repository
	Authors author.Repository
}

// Transactor runs fn inside one transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise; the
// error returned by fn is passed through unchanged.
type Transactor interface {
	WithinTx(context context.Context, fn func(stores Stores) error) error
}

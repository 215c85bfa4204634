// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book implements the catalog of books and their author associations.

A book is identified externally by its ISBN and carries one or more authors.
Authors are resolved by name through [author.Resolver] and linked through an
explicit association table; every operation of [Service] runs in a single
transaction obtained from a [Transactor].
*/
package book

import (
	"slices"
	"time"

	"github.com/taibuivan/libris/internal/core/author"
)

// Book is a catalog entry.
//
// ID is a storage-only surrogate key; ISBN is the identity clients see.
type Book struct {
	ID              string
	ISBN            string
	Title           string
	PublicationYear int
	Authors         []author.Author
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Response is the JSON representation of a [Book].
type Response struct {
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	AuthorNames     []string `json:"authorNames"`
	PublicationYear int      `json:"publicationYear"`
}

// ToResponse renders the book with its author names sorted.
func (b *Book) ToResponse() Response {
	names := author.Names(b.Authors)
	if names == nil {
		names = []string{}
	}
	slices.Sort(names)

	return Response{
		ISBN:            b.ISBN,
		Title:           b.Title,
		AuthorNames:     names,
		PublicationYear: b.PublicationYear,
	}
}

// CreateRequest is the payload accepted by [Service.Create].
type CreateRequest struct {
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	AuthorNames     []string `json:"authorNames"`
	PublicationYear int      `json:"publicationYear"`
}

// Patch is a partial update; a nil field is left untouched.
type Patch struct {
	ISBN            *string   `json:"isbn"`
	Title           *string   `json:"title"`
	AuthorNames     *[]string `json:"authorNames"`
	PublicationYear *int      `json:"publicationYear"`
}

// Filter selects books for [Service.FindMany].
//
// At most one of AuthorName or the (RangeStart, RangeEnd) pair may be set.
type Filter struct {
	AuthorName *string
	RangeStart *int
	RangeEnd   *int
}

// Global field names for validation and query parameters
const (
	FieldISBN            = "isbn"
	FieldTitle           = "title"
	FieldAuthorNames     = "authorNames"
	FieldPublicationYear = "publicationYear"

	QueryAuthorName = "authorName"
	QueryRangeStart = "rangeStart"
	QueryRangeEnd   = "rangeEnd"
)

// MaxTitleLength bounds a title in characters.
const MaxTitleLength = 500

package book

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/core/author"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/internal/platform/postgres"
	isbnpkg "github.com/taibuivan/libris/pkg/isbn"
	"github.com/taibuivan/libris/pkg/slice"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository constructs a PostgreSQL backed book store on a pool
// or a transaction.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
selectBooks builds the book projection shared by every read.

Authors are aggregated into a JSON array by a correlated sub-select so a
book and its full author set come back in one row, whatever the outer
filter matched on.
*/
func selectBooks(where string) string {
	return fmt.Sprintf(`
		SELECT
			b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
			COALESCE((
				SELECT json_agg(json_build_object('id', a.%s, 'name', a.%s, 'created_at', a.%s) ORDER BY a.%s)
				FROM %s a
				JOIN %s ba ON a.%s = ba.%s
				WHERE ba.%s = b.%s
			), '[]') AS authors
		FROM %s b
		%s
		ORDER BY b.%s COLLATE "C" ASC, b.%s COLLATE "C" ASC
	`,
		schema.CatalogBook.ID,
		schema.CatalogBook.ISBN,
		schema.CatalogBook.Title,
		schema.CatalogBook.PublicationYear,
		schema.CatalogBook.CreatedAt,
		schema.CatalogBook.UpdatedAt,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.Name,
		schema.CatalogAuthor.Table,
		schema.CatalogBookAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBookAuthor.AuthorID,
		schema.CatalogBookAuthor.BookID, schema.CatalogBook.ID,
		schema.CatalogBook.Table,
		where,
		schema.CatalogBook.ISBNKey,
		schema.CatalogBook.ISBN,
	)
}

func scanBook(row pgx.Row) (*Book, error) {
	book := &Book{}
	var authorsJSON []byte

	err := row.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.PublicationYear,
		&book.CreatedAt,
		&book.UpdatedAt,
		&authorsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(authorsJSON, &book.Authors); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal authors: %w", err)
	}

	return book, nil
}

// FindByISBN implements [Repository].
func (repository *PostgresRepository) FindByISBN(context context.Context, isbn string) (*Book, error) {
	query := selectBooks(fmt.Sprintf("WHERE b.%s = $1", schema.CatalogBook.ISBNKey))

	book, err := scanBook(repository.db.QueryRow(context, query, isbnpkg.Key(isbn)))
	if err != nil {
		return nil, dberr.Wrap(err, "find_book_by_isbn")
	}

	return book, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, filter Filter) ([]*Book, error) {
	var where strings.Builder
	var args []any

	switch {
	case filter.AuthorName != nil:
		// Match on any linked author; the projection still returns the full set.
		where.WriteString(fmt.Sprintf(`WHERE EXISTS (
			SELECT 1 FROM %s fba
			JOIN %s fa ON fa.%s = fba.%s
			WHERE fba.%s = b.%s AND fa.%s = $1
		)`,
			schema.CatalogBookAuthor.Table,
			schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBookAuthor.AuthorID,
			schema.CatalogBookAuthor.BookID, schema.CatalogBook.ID, schema.CatalogAuthor.Name,
		))
		args = append(args, *filter.AuthorName)

	case filter.RangeStart != nil && filter.RangeEnd != nil:
		where.WriteString(fmt.Sprintf("WHERE b.%s BETWEEN $1 AND $2", schema.CatalogBook.PublicationYear))
		args = append(args, *filter.RangeStart, *filter.RangeEnd)
	}

	rows, err := repository.db.Query(context, selectBooks(where.String()), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_book")
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}

	return books, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID,
		schema.CatalogBook.ISBN,
		schema.CatalogBook.ISBNKey,
		schema.CatalogBook.Title,
		schema.CatalogBook.PublicationYear,
		schema.CatalogBook.CreatedAt,
		schema.CatalogBook.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		book.ID, book.ISBN, isbnpkg.Key(book.ISBN), book.Title, book.PublicationYear, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "create_book")
	}

	return repository.insertLinks(context, book.ID, authorIDs(book.Authors))
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ISBN,
		schema.CatalogBook.ISBNKey,
		schema.CatalogBook.Title,
		schema.CatalogBook.PublicationYear,
		schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID,
	)

	tag, err := repository.db.Exec(context, query,
		book.ID, book.ISBN, isbnpkg.Key(book.ISBN), book.Title, book.PublicationYear, book.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_book")
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// ReplaceAuthors implements [Repository].
func (repository *PostgresRepository) ReplaceAuthors(context context.Context, bookID string, ids []int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogBookAuthor.Table, schema.CatalogBookAuthor.BookID,
	)

	if _, err := repository.db.Exec(context, query, bookID); err != nil {
		return dberr.Wrap(err, "clear_book_authors")
	}

	return repository.insertLinks(context, bookID, ids)
}

// DeleteByISBN implements [Repository].
func (repository *PostgresRepository) DeleteByISBN(context context.Context, isbn string) error {
	linksQuery := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = (SELECT %s FROM %s WHERE %s = $1)
	`,
		schema.CatalogBookAuthor.Table,
		schema.CatalogBookAuthor.BookID,
		schema.CatalogBook.ID, schema.CatalogBook.Table, schema.CatalogBook.ISBNKey,
	)

	key := isbnpkg.Key(isbn)
	if _, err := repository.db.Exec(context, linksQuery, key); err != nil {
		return dberr.Wrap(err, "delete_book_authors")
	}

	bookQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogBook.Table, schema.CatalogBook.ISBNKey)

	tag, err := repository.db.Exec(context, bookQuery, key)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// insertLinks writes one association row per author in a single statement.
func (repository *PostgresRepository) insertLinks(context context.Context, bookID string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1::uuid, unnest($2::bigint[])
	`,
		schema.CatalogBookAuthor.Table,
		schema.CatalogBookAuthor.BookID,
		schema.CatalogBookAuthor.AuthorID,
	)

	if _, err := repository.db.Exec(context, query, bookID, ids); err != nil {
		return dberr.Wrap(err, "link_book_authors")
	}

	return nil
}

// # Transactor

// PostgresTransactor implements [Transactor] on a pgx pool.
type PostgresTransactor struct {
	pool *pgxpool.Pool
}

// NewPostgresTransactor constructs a [PostgresTransactor].
func NewPostgresTransactor(pool *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{pool: pool}
}

// WithinTx implements [Transactor].
func (transactor *PostgresTransactor) WithinTx(context context.Context, fn func(stores Stores) error) error {
	return postgres.WithinTx(context, transactor.pool, func(tx pgx.Tx) error {
		return fn(Stores{
			Books:   NewPostgresRepository(tx),
			Authors: author.NewPostgresRepository(tx),
		})
	})
}

func authorIDs(authors []author.Author) []int {
	return slice.Map(authors, func(a author.Author) int { return a.ID })
}

package author

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
//
// It runs on whatever [postgres.DBTX] it is given, so the same repository
// type serves both the pool and a transaction.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository constructs a PostgreSQL backed author store.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByName implements [Repository].
func (repository *PostgresRepository) FindByName(context context.Context, name string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.CreatedAt,
		schema.CatalogAuthor.Table,
		schema.CatalogAuthor.Name,
	)

	author := &Author{}
	err := repository.db.QueryRow(context, query, name).Scan(&author.ID, &author.Name, &author.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find_author_by_name")
	}

	return author, nil
}

/*
Create implements [Repository].

ON CONFLICT DO NOTHING keeps the enclosing transaction alive when a
concurrent writer inserted the same name first; the missing RETURNING row is
reported as [ErrDuplicateName].
*/
func (repository *PostgresRepository) Create(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s
	`,
		schema.CatalogAuthor.Table,
		schema.CatalogAuthor.Name, schema.CatalogAuthor.CreatedAt,
		schema.CatalogAuthor.Name,
		schema.CatalogAuthor.ID,
	)

	err := repository.db.QueryRow(context, query, author.Name, author.CreatedAt).Scan(&author.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberr.IsUniqueViolation(err) {
			return ErrDuplicateName
		}
		return dberr.Wrap(err, "create_author")
	}

	return nil
}

package book

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taibuivan/libris/internal/core/author"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
	isbnpkg "github.com/taibuivan/libris/pkg/isbn"
	"github.com/taibuivan/libris/pkg/slice"
)

// # SQLite Models

// Record is the GORM model of the book table.
type Record struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ISBN            string    `gorm:"column:isbn;not null"`
	ISBNKey         string    `gorm:"column:isbnkey;not null;uniqueIndex"`
	Title           string    `gorm:"column:title;not null"`
	PublicationYear int       `gorm:"column:publicationyear;not null;index"`
	CreatedAt       time.Time `gorm:"column:createdat;not null"`
	UpdatedAt       time.Time `gorm:"column:updatedat;not null"`
}

// TableName implements gorm's tabler interface.
func (Record) TableName() string { return schema.CatalogBook.Table }

// LinkRecord is the GORM model of the book_author association table.
type LinkRecord struct {
	BookID   string `gorm:"column:bookid;primaryKey"`
	AuthorID int    `gorm:"column:authorid;primaryKey;index"`
}

// TableName implements gorm's tabler interface.
func (LinkRecord) TableName() string { return schema.CatalogBookAuthor.Table }

// Models lists every model the catalog needs, in creation order.
func Models() []any {
	return []any{&author.Record{}, &Record{}, &LinkRecord{}}
}

// authorRow is one (book, author) pair read back from the association.
type authorRow struct {
	BookID    string
	ID        int
	Name      string
	CreatedAt time.Time
}

// # SQLite Repository

// SQLiteRepository implements [Repository] on GORM.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository constructs a GORM backed book store. Pass the
// transaction handle when running inside a unit of work.
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindByISBN implements [Repository].
func (repository *SQLiteRepository) FindByISBN(context context.Context, isbn string) (*Book, error) {
	var record Record

	err := repository.db.WithContext(context).
		Where(schema.CatalogBook.ISBNKey+" = ?", isbnpkg.Key(isbn)).
		Take(&record).Error
	if err != nil {
		return nil, dberr.Wrap(err, "find_book_by_isbn")
	}

	books, err := repository.hydrate(context, []Record{record})
	if err != nil {
		return nil, err
	}

	return books[0], nil
}

// List implements [Repository].
func (repository *SQLiteRepository) List(context context.Context, filter Filter) ([]*Book, error) {
	query := repository.db.WithContext(context).Model(&Record{})

	switch {
	case filter.AuthorName != nil:
		query = query.Where(fmt.Sprintf(
			"%s IN (SELECT ba.%s FROM %s ba JOIN %s a ON a.%s = ba.%s WHERE a.%s = ?)",
			schema.CatalogBook.ID,
			schema.CatalogBookAuthor.BookID, schema.CatalogBookAuthor.Table,
			schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBookAuthor.AuthorID,
			schema.CatalogAuthor.Name,
		), *filter.AuthorName)

	case filter.RangeStart != nil && filter.RangeEnd != nil:
		query = query.Where(schema.CatalogBook.PublicationYear+" BETWEEN ? AND ?", *filter.RangeStart, *filter.RangeEnd)
	}

	var records []Record
	if err := query.Order(schema.CatalogBook.ISBNKey + " ASC").Order(schema.CatalogBook.ISBN + " ASC").Find(&records).Error; err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}

	return repository.hydrate(context, records)
}

// Create implements [Repository].
func (repository *SQLiteRepository) Create(context context.Context, book *Book) error {
	record := Record{
		ID:              book.ID,
		ISBN:            book.ISBN,
		ISBNKey:         isbnpkg.Key(book.ISBN),
		Title:           book.Title,
		PublicationYear: book.PublicationYear,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}

	if err := repository.db.WithContext(context).Create(&record).Error; err != nil {
		return dberr.Wrap(err, "create_book")
	}

	return repository.insertLinks(context, book.ID, authorIDs(book.Authors))
}

// Update implements [Repository].
func (repository *SQLiteRepository) Update(context context.Context, book *Book) error {
	result := repository.db.WithContext(context).
		Model(&Record{}).
		Where(schema.CatalogBook.ID+" = ?", book.ID).
		Updates(map[string]any{
			schema.CatalogBook.ISBN:            book.ISBN,
			schema.CatalogBook.ISBNKey:         isbnpkg.Key(book.ISBN),
			schema.CatalogBook.Title:           book.Title,
			schema.CatalogBook.PublicationYear: book.PublicationYear,
			schema.CatalogBook.UpdatedAt:       book.UpdatedAt,
		})

	if result.Error != nil {
		return dberr.Wrap(result.Error, "update_book")
	}

	if result.RowsAffected == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// ReplaceAuthors implements [Repository].
func (repository *SQLiteRepository) ReplaceAuthors(context context.Context, bookID string, ids []int) error {
	err := repository.db.WithContext(context).
		Where(schema.CatalogBookAuthor.BookID+" = ?", bookID).
		Delete(&LinkRecord{}).Error
	if err != nil {
		return dberr.Wrap(err, "clear_book_authors")
	}

	return repository.insertLinks(context, bookID, ids)
}

// DeleteByISBN implements [Repository].
func (repository *SQLiteRepository) DeleteByISBN(context context.Context, isbn string) error {
	var record Record

	db := repository.db.WithContext(context)
	if err := db.Where(schema.CatalogBook.ISBNKey+" = ?", isbnpkg.Key(isbn)).Take(&record).Error; err != nil {
		return dberr.Wrap(err, "find_book_by_isbn")
	}

	if err := db.Where(schema.CatalogBookAuthor.BookID+" = ?", record.ID).Delete(&LinkRecord{}).Error; err != nil {
		return dberr.Wrap(err, "delete_book_authors")
	}

	if err := db.Delete(&Record{}, schema.CatalogBook.ID+" = ?", record.ID).Error; err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	return nil
}

func (repository *SQLiteRepository) insertLinks(context context.Context, bookID string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	links := slice.Map(ids, func(id int) LinkRecord { return LinkRecord{BookID: bookID, AuthorID: id} })

	if err := repository.db.WithContext(context).Create(&links).Error; err != nil {
		return dberr.Wrap(err, "link_book_authors")
	}

	return nil
}

// hydrate converts records to books and attaches each book's authors with
// one join query for the whole batch.
func (repository *SQLiteRepository) hydrate(context context.Context, records []Record) ([]*Book, error) {
	books := make([]*Book, len(records))
	if len(records) == 0 {
		return books, nil
	}

	byID := make(map[string]*Book, len(records))
	for i, record := range records {
		books[i] = &Book{
			ID:              record.ID,
			ISBN:            record.ISBN,
			Title:           record.Title,
			PublicationYear: record.PublicationYear,
			CreatedAt:       record.CreatedAt,
			UpdatedAt:       record.UpdatedAt,
		}
		byID[record.ID] = books[i]
	}

	var rows []authorRow
	err := repository.db.WithContext(context).
		Table(schema.CatalogBookAuthor.Table+" ba").
		Select(fmt.Sprintf("ba.%s AS book_id, a.%s AS id, a.%s AS name, a.%s AS created_at",
			schema.CatalogBookAuthor.BookID,
			schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.CreatedAt,
		)).
		Joins(fmt.Sprintf("JOIN %s a ON a.%s = ba.%s",
			schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBookAuthor.AuthorID,
		)).
		Where("ba."+schema.CatalogBookAuthor.BookID+" IN ?", slice.Map(records, func(r Record) string { return r.ID })).
		Order("a." + schema.CatalogAuthor.Name + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, dberr.Wrap(err, "load_book_authors")
	}

	for _, row := range rows {
		if book, ok := byID[row.BookID]; ok {
			book.Authors = append(book.Authors, author.Author{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt})
		}
	}

	return books, nil
}

// # Transactor

// SQLiteTransactor implements [Transactor] on a GORM handle.
type SQLiteTransactor struct {
	db *gorm.DB
}

// NewSQLiteTransactor constructs a [SQLiteTransactor].
func NewSQLiteTransactor(db *gorm.DB) *SQLiteTransactor {
	return &SQLiteTransactor{db: db}
}

// WithinTx implements [Transactor].
func (transactor *SQLiteTransactor) WithinTx(context context.Context, fn func(stores Stores) error) error {
	return transactor.db.WithContext(context).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Books:   NewSQLiteRepository(tx),
			Authors: author.NewSQLiteRepository(tx),
		})
	})
}

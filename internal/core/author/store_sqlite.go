package author

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

// # SQLite Repository

// Record is the GORM model of the author table.
type Record struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:createdat;not null"`
}

// TableName implements gorm's tabler interface.
func (Record) TableName() string { return schema.CatalogAuthor.Table }

func (r Record) toDomain() *Author {
	return &Author{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

// SQLiteRepository implements [Repository] on GORM.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository constructs a GORM backed author store. Pass the
// transaction handle when running inside a unit of work.
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindByName implements [Repository].
func (repository *SQLiteRepository) FindByName(context context.Context, name string) (*Author, error) {
	var record Record

	err := repository.db.WithContext(context).
		Where(schema.CatalogAuthor.Name+" = ?", name).
		Take(&record).Error
	if err != nil {
		return nil, dberr.Wrap(err, "find_author_by_name")
	}

	return record.toDomain(), nil
}

// Create implements [Repository].
func (repository *SQLiteRepository) Create(context context.Context, author *Author) error {
	record := Record{Name: author.Name, CreatedAt: author.CreatedAt}

	result := repository.db.WithContext(context).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: schema.CatalogAuthor.Name}}, DoNothing: true}).
		Create(&record)

	if result.Error != nil {
		if dberr.IsUniqueViolation(result.Error) {
			return ErrDuplicateName
		}
		return dberr.Wrap(result.Error, "create_author")
	}

	if result.RowsAffected == 0 {
		return ErrDuplicateName
	}

	author.ID = record.ID
	author.CreatedAt = record.CreatedAt
	return nil
}

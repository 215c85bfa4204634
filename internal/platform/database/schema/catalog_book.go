package schema

// CatalogBookTable represents the 'book' table
type CatalogBookTable struct {
	Table           string
	ID              string
	ISBN            string
	ISBNKey         string
	Title           string
	PublicationYear string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogBook is the schema definition for book
var CatalogBook = CatalogBookTable{
	Table:           "book",
	ID:              "id",
	ISBN:            "isbn",
	ISBNKey:         "isbnkey",
	Title:           "title",
	PublicationYear: "publicationyear",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{t.ID, t.ISBN, t.ISBNKey, t.Title, t.PublicationYear, t.CreatedAt, t.UpdatedAt}
}

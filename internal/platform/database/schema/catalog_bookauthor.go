package schema

// CatalogBookAuthorTable represents the 'book_author' junction table
type CatalogBookAuthorTable struct {
	Table    string
	BookID   string
	AuthorID string
}

// CatalogBookAuthor is the schema definition for book_author
var CatalogBookAuthor = CatalogBookAuthorTable{
	Table:    "book_author",
	BookID:   "bookid",
	AuthorID: "authorid",
}

func (t CatalogBookAuthorTable) Columns() []string {
	return []string{t.BookID, t.AuthorID}
}

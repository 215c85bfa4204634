package schema

// CatalogAuthorTable represents the 'author' table
type CatalogAuthorTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
}

// CatalogAuthor is the schema definition for author
var CatalogAuthor = CatalogAuthorTable{
	Table:     "author",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
}

func (t CatalogAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt}
}

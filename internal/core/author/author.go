package author

import (
	"errors"
	"time"

	"github.com/taibuivan/libris/pkg/slice"
)

// Author is a person credited on one or more books.
//
// Authors are identified by their normalized name. They are created lazily
// the first time a book references the name and are never mutated or
// deleted afterwards.
type Author struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrDuplicateName is reported by [Repository.Create] when another writer
// already holds the name. The surrounding transaction stays usable.
var ErrDuplicateName = errors.New("author: name already exists")

// MaxNameLength bounds an author name in characters.
const MaxNameLength = 200

// Names returns the names of authors in their current order.
func Names(authors []Author) []string {
	return slice.Map(authors, func(author Author) string { return author.Name })
}

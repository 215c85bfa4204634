package author

import "context"

// # Author Data Access

// Repository defines the data access contract for authors.
type Repository interface {

	/*
		FindByName returns the author whose stored name equals name exactly.

		Returns:
		  - *Author: The matching author
		  - error: dberr.ErrNotFound if absent, internal error on failure
	*/
	FindByName(context context.Context, name string) (*Author, error)

	/*
		Create inserts a new author and fills in its ID and CreatedAt.

		Returns:
		  - error: ErrDuplicateName if the name is already taken
	*/
	Create(context context.Context, author *Author) error
}

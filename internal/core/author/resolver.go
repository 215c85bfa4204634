package author

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/dberr"
	"github.com/taibuivan/libris/pkg/slice"
	"github.com/taibuivan/libris/pkg/textnorm"
)

// # Association Resolver

// Resolver maps author names onto stored authors, creating the missing ones.
//
// A Resolver is bound to one [Repository]; build a new one per transaction so
// every lookup and insert runs in the same unit of work.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewResolver constructs a [Resolver] over repo.
func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

/*
Resolve returns one stored author per distinct normalized name, sorted by name.

Flow:
 1. Normalize and deduplicate names; blanks are dropped.
 2. Look each name up; create it when absent.
 3. If the insert lost a race to another writer, re-read the name once.

Returns:
  - []*Author: Resolved authors, one per distinct name
  - error: apperr.Conflict if a raced name still cannot be read back
*/
func (resolver *Resolver) Resolve(context context.Context, names []string) ([]*Author, error) {
	normalized := slice.Filter(textnorm.Set(names), func(name string) bool { return name != "" })

	authors := make([]*Author, 0, len(normalized))
	for _, name := range normalized {
		author, err := resolver.resolveOne(context, name)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}

	return authors, nil
}

func (resolver *Resolver) resolveOne(context context.Context, name string) (*Author, error) {
	existing, err := resolver.repo.FindByName(context, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	created := &Author{Name: name, CreatedAt: resolver.now().UTC()}
	err = resolver.repo.Create(context, created)
	if err == nil {
		resolver.logger.InfoContext(context, "author_created",
			slog.Int("author_id", created.ID),
			slog.String("name", name),
		)
		return created, nil
	}
	if !errors.Is(err, ErrDuplicateName) && !dberr.IsUniqueViolation(err) {
		return nil, err
	}

	// Another writer inserted the name between our read and our insert.
	raced, err := resolver.repo.FindByName(context, name)
	if err != nil {
		resolver.logger.WarnContext(context, "author_race_unresolved",
			slog.String("name", name),
			slog.Any("error", err),
		)
		return nil, apperr.Conflict(fmt.Sprintf("author %s could not be resolved", name))
	}

	resolver.logger.DebugContext(context, "author_race_recovered",
		slog.Int("author_id", raced.ID),
		slog.String("name", name),
	)
	return raced, nil
}

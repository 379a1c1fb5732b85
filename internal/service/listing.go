package service

import (
	"context"

	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/repository"
)

// Listing is one page of a paginated collection.  Next is the following
// page number, or 0 on the last page.
type Listing[T any] struct {
	TotalPages  int
	CurrentPage int
	TotalItems  int
	Items       []T
	Next        int
}

// snapshotter is implemented by the stores.
type snapshotter interface {
	Snapshot(ctx context.Context, fn func(q repository.Querier) error) error
}

// assemble counts the collection and reads the requested window inside one
// read snapshot, so the page metadata always describes the rows returned.
// An empty collection yields page 1 of 1 without reading a window.
func assemble[T any](
	ctx context.Context,
	s snapshotter,
	pageNo, size int,
	count func(ctx context.Context, q repository.Querier) (int, error),
	window func(ctx context.Context, q repository.Querier, w pagination.Window) ([]T, error),
) (Listing[T], error) {
	var out Listing[T]
	err := s.Snapshot(ctx, func(q repository.Querier) error {
		total, err := count(ctx, q)
		if err != nil {
			return err
		}
		if total == 0 {
			out = Listing[T]{TotalPages: 1, CurrentPage: 1, Items: []T{}}
			return nil
		}
		page, err := pagination.Compute(total, pageNo, size)
		if err != nil {
			return err
		}
		items, err := window(ctx, q, page.Window)
		if err != nil {
			return err
		}
		out = Listing[T]{
			TotalPages:  page.TotalPages,
			CurrentPage: page.Number,
			TotalItems:  page.TotalItems,
			Items:       items,
			Next:        page.Next(),
		}
		return nil
	})
	if err != nil {
		return Listing[T]{}, err
	}
	return out, nil
}

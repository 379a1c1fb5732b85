package service

import (
	"context"

	"github.com/iliyamo/film-review/internal/authz"
	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/queue"
	"github.com/iliyamo/film-review/internal/repository"
)

// FilmService exposes film operations and the film listings.
type FilmService struct {
	films    *repository.FilmRepo
	events   EventPublisher
	cache    CacheInvalidator
	pageSize int
}

// NewFilmService wires the film store.  Nil events or cache disable
// publishing and invalidation.
func NewFilmService(films *repository.FilmRepo, events EventPublisher, cache CacheInvalidator, pageSize int) *FilmService {
	if events == nil {
		events = NopPublisher{}
	}
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &FilmService{films: films, events: events, cache: cache, pageSize: pageSize}
}

func (s *FilmService) Create(ctx context.Context, in model.FilmInput, ownerID uint64) (model.Film, error) {
	f, err := s.films.Create(ctx, in, ownerID)
	if err != nil {
		return model.Film{}, err
	}
	if !f.Private {
		invalidate(ctx, s.cache)
	}
	return f, nil
}

func (s *FilmService) GetPublic(ctx context.Context, filmID uint64) (model.Film, error) {
	return s.films.GetPublic(ctx, filmID)
}

func (s *FilmService) GetPrivate(ctx context.Context, filmID, ownerID uint64) (model.Film, error) {
	return s.films.GetPrivate(ctx, filmID, ownerID)
}

// Update patches the film addressed through path.
func (s *FilmService) Update(ctx context.Context, filmID uint64, path authz.AccessPath, ownerID uint64, u model.FilmUpdate) error {
	if err := s.films.Update(ctx, filmID, path, ownerID, u); err != nil {
		return err
	}
	if !path.Private() {
		invalidate(ctx, s.cache)
	}
	return nil
}

// Delete removes the film addressed through path.  Deleting a public film
// also withdraws its reviews, which is announced as an event.
func (s *FilmService) Delete(ctx context.Context, filmID uint64, path authz.AccessPath, ownerID uint64) error {
	if err := s.films.Delete(ctx, filmID, path, ownerID); err != nil {
		return err
	}
	if !path.Private() {
		invalidate(ctx, s.cache)
		publish(s.events, queue.ReviewEvent{Type: queue.PublicFilmDeleted, FilmID: filmID, ActorID: ownerID})
	}
	return nil
}

func (s *FilmService) ListPublic(ctx context.Context, pageNo int) (Listing[model.Film], error) {
	return assemble(ctx, s.films, pageNo, s.pageSize, s.films.CountPublic, s.films.ListPublic)
}

func (s *FilmService) ListPrivate(ctx context.Context, ownerID uint64, pageNo int) (Listing[model.Film], error) {
	return assemble(ctx, s.films, pageNo, s.pageSize,
		func(ctx context.Context, q repository.Querier) (int, error) {
			return s.films.CountPrivate(ctx, q, ownerID)
		},
		func(ctx context.Context, q repository.Querier, w pagination.Window) ([]model.Film, error) {
			return s.films.ListPrivate(ctx, q, ownerID, w)
		})
}

// ListInvited lists the public films reviewerID has been invited to review.
func (s *FilmService) ListInvited(ctx context.Context, reviewerID uint64, pageNo int) (Listing[model.Film], error) {
	return assemble(ctx, s.films, pageNo, s.pageSize,
		func(ctx context.Context, q repository.Querier) (int, error) {
			return s.films.CountInvited(ctx, q, reviewerID)
		},
		func(ctx context.Context, q repository.Querier, w pagination.Window) ([]model.Film, error) {
			return s.films.ListInvited(ctx, q, reviewerID, w)
		})
}

package service

import (
	"context"

	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/queue"
	"github.com/iliyamo/film-review/internal/repository"
)

// ReviewService exposes the review lifecycle and the per-film review listing.
// Events are published only after the underlying transaction committed.
type ReviewService struct {
	reviews  *repository.ReviewRepo
	events   EventPublisher
	cache    CacheInvalidator
	pageSize int
}

func NewReviewService(reviews *repository.ReviewRepo, events EventPublisher, cache CacheInvalidator, pageSize int) *ReviewService {
	if events == nil {
		events = NopPublisher{}
	}
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &ReviewService{reviews: reviews, events: events, cache: cache, pageSize: pageSize}
}

// Issue invites reviewers to the film named by every invitation.
func (s *ReviewService) Issue(ctx context.Context, ownerID uint64, invitations []model.Invitation) ([]model.Review, error) {
	out, err := s.reviews.Issue(ctx, ownerID, invitations)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	ids := make([]uint64, len(out))
	for i, r := range out {
		ids[i] = r.ReviewerID
	}
	publish(s.events, queue.ReviewEvent{Type: queue.ReviewsIssued, FilmID: out[0].FilmID, ReviewerIDs: ids, ActorID: ownerID})
	return out, nil
}

func (s *ReviewService) Get(ctx context.Context, filmID, reviewerID uint64) (model.Review, error) {
	return s.reviews.Get(ctx, filmID, reviewerID)
}

// Complete records the reviewer's review.  actorID is the authenticated
// caller, which must be the invited reviewer.
func (s *ReviewService) Complete(ctx context.Context, filmID, reviewerID, actorID uint64, u model.ReviewUpdate) (model.Review, error) {
	rv, err := s.reviews.Complete(ctx, filmID, reviewerID, actorID, u)
	if err != nil {
		return model.Review{}, err
	}
	invalidate(ctx, s.cache)
	publish(s.events, queue.ReviewEvent{Type: queue.ReviewCompleted, FilmID: filmID, ReviewerIDs: []uint64{reviewerID}, ActorID: actorID})
	return rv, nil
}

// Delete withdraws a pending invitation.
func (s *ReviewService) Delete(ctx context.Context, filmID, reviewerID, ownerID uint64) error {
	if err := s.reviews.Delete(ctx, filmID, reviewerID, ownerID); err != nil {
		return err
	}
	invalidate(ctx, s.cache)
	publish(s.events, queue.ReviewEvent{Type: queue.ReviewWithdrawn, FilmID: filmID, ReviewerIDs: []uint64{reviewerID}, ActorID: ownerID})
	return nil
}

func (s *ReviewService) ListForFilm(ctx context.Context, filmID uint64, pageNo int) (Listing[model.Review], error) {
	return assemble(ctx, s.reviews, pageNo, s.pageSize,
		func(ctx context.Context, q repository.Querier) (int, error) {
			return s.reviews.CountForFilm(ctx, q, filmID)
		},
		func(ctx context.Context, q repository.Querier, w pagination.Window) ([]model.Review, error) {
			return s.reviews.ListForFilm(ctx, q, filmID, w)
		})
}

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/repository"
)

func TestIssueOwnership(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f1 := fx.create(t, model.FilmInput{Title: "F1"}, fx.u1)
	invs := []model.Invitation{{FilmID: f1.ID, ReviewerID: fx.u3}}

	if _, err := fx.reviews.Issue(ctx, fx.u2, invs); !errors.Is(err, repository.ErrUserNotOwner) {
		t.Fatalf("non-owner issue: %v", err)
	}
	got, err := fx.reviews.Issue(ctx, fx.u1, invs)
	if err != nil {
		t.Fatalf("owner issue: %v", err)
	}
	if len(got) != 1 || got[0].FilmID != f1.ID || got[0].ReviewerID != fx.u3 || got[0].Completed {
		t.Fatalf("issued = %+v", got)
	}
}

func TestIssueFailures(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	pub := fx.create(t, model.FilmInput{Title: "pub"}, fx.u1)
	priv := fx.create(t, model.FilmInput{Title: "priv", Private: true}, fx.u1)

	tests := []struct {
		name string
		invs []model.Invitation
		want error
	}{
		{"empty", nil, model.ErrNoInvitations},
		{"missing film", []model.Invitation{{FilmID: 9999, ReviewerID: fx.u2}}, repository.ErrNoFilms},
		{"private film", []model.Invitation{{FilmID: priv.ID, ReviewerID: fx.u2}}, repository.ErrPrivateFilm},
		{"unknown reviewer", []model.Invitation{{FilmID: pub.ID, ReviewerID: fx.u2}, {FilmID: pub.ID, ReviewerID: 4242}}, repository.ErrReviewerNotUser},
		{"mixed films", []model.Invitation{{FilmID: pub.ID, ReviewerID: fx.u2}, {FilmID: priv.ID, ReviewerID: fx.u3}}, model.ErrInvitationMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fx.reviews.Issue(ctx, fx.u1, tc.invs); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := fx.reviews.Get(ctx, pub.ID, fx.u2); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("failed batch left a review behind: %v", err)
	}
}

func TestIssueDuplicateIsAtomic(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.create(t, model.FilmInput{Title: "F"}, fx.u1)

	if _, err := fx.reviews.Issue(ctx, fx.u1, []model.Invitation{{FilmID: f.ID, ReviewerID: fx.u2}}); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	_, err := fx.reviews.Issue(ctx, fx.u1, []model.Invitation{
		{FilmID: f.ID, ReviewerID: fx.u3},
		{FilmID: f.ID, ReviewerID: fx.u2},
	})
	if !errors.Is(err, repository.ErrExistingReview) {
		t.Fatalf("duplicate issue: %v", err)
	}
	// the u3 insert preceded the collision and must have been rolled back
	if _, err := fx.reviews.Get(ctx, f.ID, fx.u3); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("partial insert survived: %v", err)
	}
}

func TestCompleteLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.create(t, model.FilmInput{Title: "F"}, fx.u1)
	if _, err := fx.reviews.Issue(ctx, fx.u1, []model.Invitation{{FilmID: f.ID, ReviewerID: fx.u2}}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := fx.reviews.Complete(ctx, f.ID, fx.u2, fx.u2, model.ReviewUpdate{Completed: ptr(false)}); !errors.Is(err, repository.ErrCompletionRequired) {
		t.Fatalf("completed=false: %v", err)
	}
	if _, err := fx.reviews.Complete(ctx, f.ID, fx.u2, fx.u2, model.ReviewUpdate{Rating: ptr(7)}); !errors.Is(err, repository.ErrCompletionRequired) {
		t.Fatalf("completed absent: %v", err)
	}
	if _, err := fx.reviews.Complete(ctx, f.ID, fx.u2, fx.u3, model.ReviewUpdate{Completed: ptr(true)}); !errors.Is(err, repository.ErrUserNotReviewer) {
		t.Fatalf("other user completes: %v", err)
	}
	if _, err := fx.reviews.Complete(ctx, f.ID, fx.u3, fx.u3, model.ReviewUpdate{Completed: ptr(true)}); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("uninvited: %v", err)
	}

	got, err := fx.reviews.Complete(ctx, f.ID, fx.u2, fx.u2, model.ReviewUpdate{Completed: ptr(true), Rating: ptr(7)})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !got.Completed || got.Rating == nil || *got.Rating != 7 || got.Review != nil || got.ReviewDate != nil {
		t.Fatalf("completed review = %+v", got)
	}
	stored, err := fx.reviews.Get(ctx, f.ID, fx.u2)
	if err != nil || !stored.Completed || stored.Review != nil {
		t.Fatalf("stored = %+v, %v", stored, err)
	}

	if _, err := fx.reviews.Complete(ctx, f.ID, fx.u2, fx.u2, model.ReviewUpdate{Completed: ptr(true), Review: ptr("again")}); !errors.Is(err, repository.ErrAlreadyCompleted) {
		t.Fatalf("re-complete: %v", err)
	}
	if err := fx.reviews.Delete(ctx, f.ID, fx.u2, fx.u1); !errors.Is(err, repository.ErrAlreadyCompleted) {
		t.Fatalf("delete completed: %v", err)
	}
}

func TestDeleteReview(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.create(t, model.FilmInput{Title: "F"}, fx.u1)
	if _, err := fx.reviews.Issue(ctx, fx.u1, []model.Invitation{{FilmID: f.ID, ReviewerID: fx.u2}}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := fx.reviews.Delete(ctx, f.ID, fx.u3, fx.u1); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("missing pair: %v", err)
	}
	if err := fx.reviews.Delete(ctx, f.ID, fx.u2, fx.u2); !errors.Is(err, repository.ErrUserNotOwner) {
		t.Fatalf("reviewer deletes: %v", err)
	}
	if err := fx.reviews.Delete(ctx, f.ID, fx.u2, fx.u1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fx.reviews.Get(ctx, f.ID, fx.u2); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("still present: %v", err)
	}
}

func TestListForFilm(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f := fx.create(t, model.FilmInput{Title: "F"}, fx.u1)
	if _, err := fx.reviews.Issue(ctx, fx.u1, []model.Invitation{
		{FilmID: f.ID, ReviewerID: fx.u3},
		{FilmID: f.ID, ReviewerID: fx.u2},
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	err := fx.reviews.Snapshot(ctx, func(q repository.Querier) error {
		n, err := fx.reviews.CountForFilm(ctx, q, f.ID)
		if err != nil || n != 2 {
			t.Errorf("count = %d, %v", n, err)
		}
		list, err := fx.reviews.ListForFilm(ctx, q, f.ID, pagination.Window{Limit: 1})
		if err != nil || len(list) != 1 || list[0].ReviewerID != fx.u2 {
			t.Errorf("first window = %+v, %v", list, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
}

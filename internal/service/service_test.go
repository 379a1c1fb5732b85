package service

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/film-review/internal/authz"
	"github.com/iliyamo/film-review/internal/database"
	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/queue"
	"github.com/iliyamo/film-review/internal/repository"
	"github.com/iliyamo/film-review/internal/testutil"
)

type recorder struct{ events chan queue.ReviewEvent }

func newRecorder() *recorder { return &recorder{events: make(chan queue.ReviewEvent, 16)} }

func (r *recorder) Publish(_ context.Context, ev queue.ReviewEvent) error {
	r.events <- ev
	return nil
}

func (r *recorder) next(t *testing.T) queue.ReviewEvent {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return queue.ReviewEvent{}
	}
}

type invalidations struct{ n atomic.Int64 }

func (i *invalidations) Invalidate(context.Context) error {
	i.n.Add(1)
	return nil
}

func setup(t *testing.T, pageSize int) (*FilmService, *ReviewService, *recorder, *sql.DB, database.Dialect) {
	films, reviews, rec, _, db, dialect := setupWithCache(t, pageSize)
	return films, reviews, rec, db, dialect
}

func setupWithCache(t *testing.T, pageSize int) (*FilmService, *ReviewService, *recorder, *invalidations, *sql.DB, database.Dialect) {
	t.Helper()
	db, dialect := testutil.OpenDB(t)
	rec := newRecorder()
	inv := &invalidations{}
	films := NewFilmService(repository.NewFilmRepo(db, dialect), rec, inv, pageSize)
	reviews := NewReviewService(repository.NewReviewRepo(db, dialect), rec, inv, pageSize)
	return films, reviews, rec, inv, db, dialect
}

func TestListPublicPaging(t *testing.T) {
	films, _, _, db, _ := setup(t, 2)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "Ann", "ann@example.com")

	empty, err := films.ListPublic(ctx, 1)
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if empty.TotalPages != 1 || empty.CurrentPage != 1 || empty.TotalItems != 0 || len(empty.Items) != 0 || empty.Next != 0 {
		t.Fatalf("empty = %+v", empty)
	}
	// an empty collection is never out of range
	if _, err := films.ListPublic(ctx, 7); err != nil {
		t.Fatalf("empty list page 7: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := films.Create(ctx, model.FilmInput{Title: "f"}, owner); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := films.Create(ctx, model.FilmInput{Title: "hidden", Private: true}, owner); err != nil {
		t.Fatalf("create private: %v", err)
	}

	first, err := films.ListPublic(ctx, 1)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if first.TotalPages != 3 || first.TotalItems != 5 || len(first.Items) != 2 || first.Next != 2 {
		t.Fatalf("page 1 = %+v", first)
	}
	last, err := films.ListPublic(ctx, 3)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(last.Items) != 1 || last.Next != 0 || last.CurrentPage != 3 {
		t.Fatalf("page 3 = %+v", last)
	}
	for _, p := range []int{0, 4} {
		if _, err := films.ListPublic(ctx, p); !errors.Is(err, pagination.ErrPageOutOfRange) {
			t.Fatalf("page %d: %v", p, err)
		}
	}
}

func TestListPrivateAndInvited(t *testing.T) {
	films, reviews, rec, db, _ := setup(t, 10)
	ctx := context.Background()
	u1 := testutil.SeedUser(t, db, "Ann", "ann@example.com")
	u2 := testutil.SeedUser(t, db, "Bob", "bob@example.com")

	if _, err := films.Create(ctx, model.FilmInput{Title: "mine", Private: true}, u1); err != nil {
		t.Fatal(err)
	}
	pub, err := films.Create(ctx, model.FilmInput{Title: "shared"}, u1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reviews.Issue(ctx, u1, []model.Invitation{{FilmID: pub.ID, ReviewerID: u2}}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec.next(t)

	mine, err := films.ListPrivate(ctx, u1, 1)
	if err != nil || mine.TotalItems != 1 || mine.Items[0].Title != "mine" {
		t.Fatalf("ListPrivate = %+v, %v", mine, err)
	}
	theirs, err := films.ListPrivate(ctx, u2, 1)
	if err != nil || theirs.TotalItems != 0 {
		t.Fatalf("ListPrivate other user = %+v, %v", theirs, err)
	}
	invited, err := films.ListInvited(ctx, u2, 1)
	if err != nil || invited.TotalItems != 1 || invited.Items[0].ID != pub.ID {
		t.Fatalf("ListInvited = %+v, %v", invited, err)
	}
}

func TestReviewEvents(t *testing.T) {
	films, reviews, rec, db, _ := setup(t, 10)
	ctx := context.Background()
	u1 := testutil.SeedUser(t, db, "Ann", "ann@example.com")
	u2 := testutil.SeedUser(t, db, "Bob", "bob@example.com")
	u3 := testutil.SeedUser(t, db, "Cid", "cid@example.com")

	f, err := films.Create(ctx, model.FilmInput{Title: "F"}, u1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reviews.Issue(ctx, u1, []model.Invitation{{FilmID: f.ID, ReviewerID: u2}, {FilmID: f.ID, ReviewerID: u3}}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	ev := rec.next(t)
	if ev.Type != queue.ReviewsIssued || ev.FilmID != f.ID || len(ev.ReviewerIDs) != 2 || ev.ActorID != u1 || ev.At.IsZero() {
		t.Fatalf("issued event = %+v", ev)
	}

	if _, err := reviews.Complete(ctx, f.ID, u2, u2, model.ReviewUpdate{Completed: ptr(true), Review: ptr("great")}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ev := rec.next(t); ev.Type != queue.ReviewCompleted || ev.ActorID != u2 {
		t.Fatalf("completed event = %+v", ev)
	}

	if err := reviews.Delete(ctx, f.ID, u3, u1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ev := rec.next(t); ev.Type != queue.ReviewWithdrawn || ev.ReviewerIDs[0] != u3 {
		t.Fatalf("withdrawn event = %+v", ev)
	}

	list, err := reviews.ListForFilm(ctx, f.ID, 1)
	if err != nil || list.TotalItems != 1 || !list.Items[0].Completed {
		t.Fatalf("ListForFilm = %+v, %v", list, err)
	}

	if err := films.Delete(ctx, f.ID, authz.PublicPath, u1); err != nil {
		t.Fatalf("delete film: %v", err)
	}
	if ev := rec.next(t); ev.Type != queue.PublicFilmDeleted {
		t.Fatalf("film event = %+v", ev)
	}
	list, err = reviews.ListForFilm(ctx, f.ID, 1)
	if err != nil || list.TotalItems != 0 {
		t.Fatalf("reviews after film delete = %+v, %v", list, err)
	}
}

func TestFailedOperationsPublishNothing(t *testing.T) {
	films, reviews, rec, db, _ := setup(t, 10)
	ctx := context.Background()
	u1 := testutil.SeedUser(t, db, "Ann", "ann@example.com")
	u2 := testutil.SeedUser(t, db, "Bob", "bob@example.com")

	f, err := films.Create(ctx, model.FilmInput{Title: "F"}, u1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reviews.Issue(ctx, u2, []model.Invitation{{FilmID: f.ID, ReviewerID: u2}}); !errors.Is(err, repository.ErrUserNotOwner) {
		t.Fatalf("issue by non-owner: %v", err)
	}
	if err := films.Delete(ctx, f.ID, authz.PublicPath, u2); !errors.Is(err, repository.ErrUserNotOwner) {
		t.Fatalf("delete by non-owner: %v", err)
	}
	select {
	case ev := <-rec.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWritesInvalidateCache(t *testing.T) {
	films, reviews, _, inv, db, _ := setupWithCache(t, 10)
	ctx := context.Background()
	u1 := testutil.SeedUser(t, db, "Ann", "ann@example.com")
	u2 := testutil.SeedUser(t, db, "Bob", "bob@example.com")

	step := func(name string, want int64, fn func() error) {
		t.Helper()
		before := inv.n.Load()
		if err := fn(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := inv.n.Load() - before; got != want {
			t.Fatalf("%s: %d invalidations, want %d", name, got, want)
		}
	}

	var pub, priv model.Film
	step("create public", 1, func() (err error) {
		pub, err = films.Create(ctx, model.FilmInput{Title: "Heat"}, u1)
		return err
	})
	step("create private", 0, func() (err error) {
		priv, err = films.Create(ctx, model.FilmInput{Title: "Diary", Private: true}, u1)
		return err
	})
	step("update public", 1, func() error {
		return films.Update(ctx, pub.ID, authz.PublicPath, u1, model.FilmUpdate{Title: "Heat (1995)"})
	})
	step("update private", 0, func() error {
		return films.Update(ctx, priv.ID, authz.PrivatePath, u1, model.FilmUpdate{Title: "Journal"})
	})
	step("issue", 1, func() error {
		_, err := reviews.Issue(ctx, u1, []model.Invitation{{FilmID: pub.ID, ReviewerID: u2}})
		return err
	})
	step("complete", 1, func() error {
		_, err := reviews.Complete(ctx, pub.ID, u2, u2, model.ReviewUpdate{Completed: ptr(true)})
		return err
	})
	step("delete public", 1, func() error { return films.Delete(ctx, pub.ID, authz.PublicPath, u1) })
	step("delete private", 0, func() error { return films.Delete(ctx, priv.ID, authz.PrivatePath, u1) })

	before := inv.n.Load()
	if err := reviews.Delete(ctx, pub.ID, u2, u1); !errors.Is(err, repository.ErrNoReviews) {
		t.Fatalf("delete missing review: %v", err)
	}
	if inv.n.Load() != before {
		t.Fatal("failed write invalidated the cache")
	}
}

func ptr[T any](v T) *T { return &v }

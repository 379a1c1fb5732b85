package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/film-review/internal/authz"
	"github.com/iliyamo/film-review/internal/database"
	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
)

// ReviewRepo provides the review lifecycle: issuance by the film owner,
// completion by the invited reviewer and deletion of pending invitations.
// A (film, reviewer) pair moves from non-existent to issued to completed
// and never back.
type ReviewRepo struct {
	store
	films *FilmRepo
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB, dialect database.Dialect) *ReviewRepo {
	s := store{db: db, dialect: dialect}
	return &ReviewRepo{store: s, films: &FilmRepo{store: s}}
}

const reviewColumns = "film_id, reviewer_id, completed, review_date, rating, review"

// Issue invites every reviewer in invitations to review the same public film
// owned by ownerID.  The batch is atomic: either every review is created or,
// on the first failure, none is.  Reviews are returned in invitation order.
func (r *ReviewRepo) Issue(ctx context.Context, ownerID uint64, invitations []model.Invitation) ([]model.Review, error) {
	if len(invitations) == 0 {
		return nil, model.ErrNoInvitations
	}
	filmID := invitations[0].FilmID
	if err := model.ValidateInvitations(filmID, invitations); err != nil {
		return nil, err
	}

	out := make([]model.Review, 0, len(invitations))
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		f, err := r.films.load(ctx, tx, filmID, true)
		if err != nil {
			return err
		}
		if !authz.IsOwner(f, ownerID) {
			return ErrUserNotOwner
		}
		if f.Private {
			return ErrPrivateFilm
		}

		if err := r.resolveReviewers(ctx, tx, invitations); err != nil {
			return err
		}

		const ins = "INSERT INTO reviews (film_id, reviewer_id, completed) VALUES (?, ?, ?)"
		for _, inv := range invitations {
			if _, err := tx.ExecContext(ctx, ins, inv.FilmID, inv.ReviewerID, false); err != nil {
				if r.dialect.IsDuplicate(err) {
					return ErrExistingReview
				}
				return fmt.Errorf("insert review: %w", err)
			}
			out = append(out, model.Review{FilmID: inv.FilmID, ReviewerID: inv.ReviewerID, Completed: false})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveReviewers fails with ErrReviewerNotUser unless every invited id is
// an existing user.  Repeated ids are checked once.
func (r *ReviewRepo) resolveReviewers(ctx context.Context, q Querier, invitations []model.Invitation) error {
	seen := make(map[uint64]bool, len(invitations))
	ids := make([]any, 0, len(invitations))
	for _, inv := range invitations {
		if !seen[inv.ReviewerID] {
			seen[inv.ReviewerID] = true
			ids = append(ids, inv.ReviewerID)
		}
	}
	n, err := count(ctx, q, "SELECT COUNT(*) FROM users WHERE id IN ("+placeholders(len(ids))+")", ids...)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return ErrReviewerNotUser
	}
	return nil
}

// Get returns the review issued to reviewerID for filmID.  No authorization
// is required.
func (r *ReviewRepo) Get(ctx context.Context, filmID, reviewerID uint64) (model.Review, error) {
	return r.load(ctx, r.db, filmID, reviewerID, false)
}

// Complete marks the review as completed and writes the review date, rating
// and text that are present in u.  Only the invited reviewer may complete a
// review, and only once.
func (r *ReviewRepo) Complete(ctx context.Context, filmID, reviewerID, actorID uint64, u model.ReviewUpdate) (model.Review, error) {
	if u.Completed == nil || !*u.Completed {
		return model.Review{}, ErrCompletionRequired
	}
	var out model.Review
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		rv, err := r.load(ctx, tx, filmID, reviewerID, true)
		if err != nil {
			return err
		}
		if !authz.IsInvitedReviewer(rv, actorID) {
			return ErrUserNotReviewer
		}
		if rv.Completed {
			return ErrAlreadyCompleted
		}

		var sets setList
		sets.set("completed", true)
		rv.Completed = true
		if u.ReviewDate != nil {
			sets.set("review_date", *u.ReviewDate)
			rv.ReviewDate = u.ReviewDate
		}
		if u.Rating != nil {
			sets.set("rating", *u.Rating)
			rv.Rating = u.Rating
		}
		if u.Review != nil {
			sets.set("review", *u.Review)
			rv.Review = u.Review
		}
		q := "UPDATE reviews SET " + sets.String() + " WHERE film_id = ? AND reviewer_id = ?"
		if _, err := tx.ExecContext(ctx, q, append(sets.args, filmID, reviewerID)...); err != nil {
			return fmt.Errorf("complete review: %w", err)
		}
		out = rv
		return nil
	})
	if err != nil {
		return model.Review{}, err
	}
	return out, nil
}

// Delete withdraws a pending invitation.  The checks run in order: the
// review must exist, ownerID must own the film, and the review must not be
// completed.
func (r *ReviewRepo) Delete(ctx context.Context, filmID, reviewerID, ownerID uint64) error {
	return r.withTx(ctx, nil, func(tx *sql.Tx) error {
		q := `SELECT f.owner, rv.completed FROM reviews rv JOIN films f ON f.id = rv.film_id
		      WHERE rv.film_id = ? AND rv.reviewer_id = ?` + r.dialect.LockClause()
		var (
			owner     uint64
			completed bool
		)
		if err := tx.QueryRowContext(ctx, q, filmID, reviewerID).Scan(&owner, &completed); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoReviews
			}
			return fmt.Errorf("load review: %w", err)
		}
		if !authz.IsOwner(model.Film{ID: filmID, Owner: owner}, ownerID) {
			return ErrUserNotOwner
		}
		if completed {
			return ErrAlreadyCompleted
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE film_id = ? AND reviewer_id = ?", filmID, reviewerID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return nil
	})
}

// CountForFilm returns the number of reviews issued for filmID.
func (r *ReviewRepo) CountForFilm(ctx context.Context, q Querier, filmID uint64) (int, error) {
	return count(ctx, q, "SELECT COUNT(*) FROM reviews WHERE film_id = ?", filmID)
}

// ListForFilm returns one window of filmID's reviews ordered by reviewer.
func (r *ReviewRepo) ListForFilm(ctx context.Context, q Querier, filmID uint64, w pagination.Window) ([]model.Review, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE film_id = ? ORDER BY reviewer_id LIMIT ? OFFSET ?",
		filmID, w.Limit, w.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

func (r *ReviewRepo) load(ctx context.Context, q Querier, filmID, reviewerID uint64, lock bool) (model.Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE film_id = ? AND reviewer_id = ?"
	if lock {
		query += r.dialect.LockClause()
	}
	rv, err := scanReview(q.QueryRowContext(ctx, query, filmID, reviewerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Review{}, ErrNoReviews
		}
		return model.Review{}, fmt.Errorf("load review: %w", err)
	}
	return rv, nil
}

func scanReview(s rowScanner) (model.Review, error) {
	var (
		rv         model.Review
		reviewDate sql.NullString
		rating     sql.NullInt64
		text       sql.NullString
	)
	if err := s.Scan(&rv.FilmID, &rv.ReviewerID, &rv.Completed, &reviewDate, &rating, &text); err != nil {
		return model.Review{}, err
	}
	rv.ReviewDate = stringPtr(reviewDate)
	rv.Rating = intPtr(rating)
	rv.Review = stringPtr(text)
	return rv, nil
}

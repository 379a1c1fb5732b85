// Package repository contains data access logic separated from HTTP handlers.
// This file defines the film repository.  Every read-then-write sequence runs
// inside one transaction: the film row is re-read (and locked where the
// engine supports it), checked against the authz predicates and only then
// mutated.
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

// FilmRepo encapsulates all database queries related to films.
type FilmRepo struct {
	store
}

// NewFilmRepo constructs a FilmRepo with the provided DB handle and dialect.
func NewFilmRepo(db *sql.DB, dialect database.Dialect) *FilmRepo {
	return &FilmRepo{store: store{db: db, dialect: dialect}}
}

const filmColumns = "id, title, owner, private, watch_date, rating, favorite"

// Create inserts a new film owned by ownerID.  Visibility is written here
// and never again.
func (r *FilmRepo) Create(ctx context.Context, in model.FilmInput, ownerID uint64) (model.Film, error) {
	in = in.Normalize()
	const q = "INSERT INTO films (title, owner, private, watch_date, rating, favorite) VALUES (?, ?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q,
		in.Title, ownerID, in.Private, nullable(in.WatchDate), nullable(in.Rating), nullable(in.Favorite))
	if err != nil {
		return model.Film{}, fmt.Errorf("insert film: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Film{}, fmt.Errorf("film id: %w", err)
	}
	return model.Film{
		ID:        uint64(id),
		Title:     in.Title,
		Owner:     ownerID,
		Private:   in.Private,
		WatchDate: in.WatchDate,
		Rating:    in.Rating,
		Favorite:  in.Favorite,
	}, nil
}

// GetPublic returns a public film stripped of private-only fields.
func (r *FilmRepo) GetPublic(ctx context.Context, filmID uint64) (model.Film, error) {
	f, err := r.load(ctx, r.db, filmID, false)
	if err != nil {
		return model.Film{}, err
	}
	if !authz.MatchesVisibility(f, authz.PublicPath) {
		return model.Film{}, ErrNoPublicFilm
	}
	return f.Public(), nil
}

// GetPrivate returns a private film to its owner.
func (r *FilmRepo) GetPrivate(ctx context.Context, filmID, requesterID uint64) (model.Film, error) {
	f, err := r.load(ctx, r.db, filmID, false)
	if err != nil {
		return model.Film{}, err
	}
	if err := checkFilm(f, authz.PrivatePath, requesterID); err != nil {
		return model.Film{}, err
	}
	return f, nil
}

// Update applies u to the film addressed through path.  On the public path
// only the title changes; on the private path watch date, rating and
// favourite are written when present and left untouched otherwise.
func (r *FilmRepo) Update(ctx context.Context, filmID uint64, path authz.AccessPath, requesterID uint64, u model.FilmUpdate) error {
	if !authz.KeepsVisibility(u, path) {
		return ErrVisibilityImmutable
	}
	return r.withTx(ctx, nil, func(tx *sql.Tx) error {
		f, err := r.load(ctx, tx, filmID, true)
		if err != nil {
			return err
		}
		if err := checkFilm(f, path, requesterID); err != nil {
			return err
		}

		var sets setList
		sets.set("title", u.Title)
		if path.Private() {
			if u.WatchDate != nil {
				sets.set("watch_date", *u.WatchDate)
			}
			if u.Rating != nil {
				sets.set("rating", *u.Rating)
			}
			if u.Favorite != nil {
				sets.set("favorite", *u.Favorite)
			}
		}
		q := "UPDATE films SET " + sets.String() + " WHERE id = ?"
		if _, err := tx.ExecContext(ctx, q, append(sets.args, filmID)...); err != nil {
			return fmt.Errorf("update film: %w", err)
		}
		return nil
	})
}

// Delete removes the film addressed through path.  Deleting a public film
// first removes all of its reviews; both deletes commit together.
func (r *FilmRepo) Delete(ctx context.Context, filmID uint64, path authz.AccessPath, requesterID uint64) error {
	return r.withTx(ctx, nil, func(tx *sql.Tx) error {
		f, err := r.load(ctx, tx, filmID, true)
		if err != nil {
			return err
		}
		if err := checkFilm(f, path, requesterID); err != nil {
			return err
		}
		if !f.Private {
			if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE film_id = ?", filmID); err != nil {
				return fmt.Errorf("delete film reviews: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM films WHERE id = ?", filmID); err != nil {
			return fmt.Errorf("delete film: %w", err)
		}
		return nil
	})
}

// CountPublic returns the number of public films.
func (r *FilmRepo) CountPublic(ctx context.Context, q Querier) (int, error) {
	return count(ctx, q, "SELECT COUNT(*) FROM films WHERE private = 0")
}

// ListPublic returns one window of public films ordered by id.
func (r *FilmRepo) ListPublic(ctx context.Context, q Querier, w pagination.Window) ([]model.Film, error) {
	films, err := r.list(ctx, q,
		"SELECT "+filmColumns+" FROM films WHERE private = 0 ORDER BY id LIMIT ? OFFSET ?",
		w.Limit, w.Offset)
	if err != nil {
		return nil, err
	}
	for i := range films {
		films[i] = films[i].Public()
	}
	return films, nil
}

// CountPrivate returns the number of private films owned by ownerID.
func (r *FilmRepo) CountPrivate(ctx context.Context, q Querier, ownerID uint64) (int, error) {
	return count(ctx, q, "SELECT COUNT(*) FROM films WHERE private = 1 AND owner = ?", ownerID)
}

// ListPrivate returns one window of ownerID's private films ordered by id.
func (r *FilmRepo) ListPrivate(ctx context.Context, q Querier, ownerID uint64, w pagination.Window) ([]model.Film, error) {
	return r.list(ctx, q,
		"SELECT "+filmColumns+" FROM films WHERE private = 1 AND owner = ? ORDER BY id LIMIT ? OFFSET ?",
		ownerID, w.Limit, w.Offset)
}

// CountInvited returns the number of public films reviewerID was invited to review.
func (r *FilmRepo) CountInvited(ctx context.Context, q Querier, reviewerID uint64) (int, error) {
	return count(ctx, q,
		`SELECT COUNT(*) FROM films f JOIN reviews rv ON rv.film_id = f.id
		 WHERE f.private = 0 AND rv.reviewer_id = ?`, reviewerID)
}

// ListInvited returns one window of the public films reviewerID was invited to review.
func (r *FilmRepo) ListInvited(ctx context.Context, q Querier, reviewerID uint64, w pagination.Window) ([]model.Film, error) {
	films, err := r.list(ctx, q,
		`SELECT f.id, f.title, f.owner, f.private, f.watch_date, f.rating, f.favorite
		 FROM films f JOIN reviews rv ON rv.film_id = f.id
		 WHERE f.private = 0 AND rv.reviewer_id = ?
		 ORDER BY f.id LIMIT ? OFFSET ?`,
		reviewerID, w.Limit, w.Offset)
	if err != nil {
		return nil, err
	}
	for i := range films {
		films[i] = films[i].Public()
	}
	return films, nil
}

// checkFilm applies the guard in its fixed order: visibility first, then
// ownership.  Existence was already established by load.
func checkFilm(f model.Film, path authz.AccessPath, requesterID uint64) error {
	if !authz.MatchesVisibility(f, path) {
		if path.Private() {
			return ErrNoPrivateFilm
		}
		return ErrNoPublicFilm
	}
	if !authz.IsOwner(f, requesterID) {
		return ErrUserNotOwner
	}
	return nil
}

// load reads one film by id, locking the row when lock is set.
func (r *FilmRepo) load(ctx context.Context, q Querier, filmID uint64, lock bool) (model.Film, error) {
	query := "SELECT " + filmColumns + " FROM films WHERE id = ?"
	if lock {
		query += r.dialect.LockClause()
	}
	f, err := scanFilm(q.QueryRowContext(ctx, query, filmID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Film{}, ErrNoFilms
		}
		return model.Film{}, fmt.Errorf("load film: %w", err)
	}
	return f, nil
}

func (r *FilmRepo) list(ctx context.Context, q Querier, query string, args ...any) ([]model.Film, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(s rowScanner) (model.Film, error) {
	var (
		f         model.Film
		watchDate sql.NullString
		rating    sql.NullInt64
		favorite  sql.NullBool
	)
	if err := s.Scan(&f.ID, &f.Title, &f.Owner, &f.Private, &watchDate, &rating, &favorite); err != nil {
		return model.Film{}, err
	}
	f.WatchDate = stringPtr(watchDate)
	f.Rating = intPtr(rating)
	f.Favorite = boolPtr(favorite)
	return f, nil
}

func count(ctx context.Context, q Querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

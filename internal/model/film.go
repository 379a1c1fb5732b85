package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of watch and review dates.
const DateLayout = "2006-01-02"

// MaxRating bounds film and review ratings (inclusive).
const MaxRating = 10

// Film represents a row in the `films` table.  Owner and Private are fixed
// at creation.  WatchDate, Rating and Favorite belong to private films only;
// public films never report them (see Public).
//
// Fields:
//
//	ID        – primary key identifier, assigned by the store.
//	Title     – film title.
//	Owner     – users.id of the creator.
//	Private   – visibility flag, immutable after creation.
//	WatchDate – optional YYYY-MM-DD date the owner watched the film.
//	Rating    – optional personal rating 0..10.
//	Favorite  – optional favourite marker.
type Film struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Owner     uint64  `json:"owner"`
	Private   bool    `json:"private"`
	WatchDate *string `json:"watchDate,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
	Favorite  *bool   `json:"favorite,omitempty"`
}

// Public returns a copy without the private-only fields.
func (f Film) Public() Film {
	f.WatchDate = nil
	f.Rating = nil
	f.Favorite = nil
	return f
}

// FilmInput is the validated payload of a film creation.
type FilmInput struct {
	Title     string  `json:"title"`
	Private   bool    `json:"private"`
	WatchDate *string `json:"watchDate,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
	Favorite  *bool   `json:"favorite,omitempty"`
}

// FilmUpdate is a film patch.  Title is always replaced; the optional fields
// are applied only when present.  Private is carried so that a visibility
// change can be detected and refused; it is never written.
type FilmUpdate struct {
	Title     string  `json:"title"`
	Private   *bool   `json:"private,omitempty"`
	WatchDate *string `json:"watchDate,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
	Favorite  *bool   `json:"favorite,omitempty"`
}

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidDate    = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidRating  = errors.New("rating must be between 0 and 10")
	ErrReviewTooLong  = errors.New("review must be at most 1000 characters")
	ErrNoInvitations  = errors.New("at least one invitation is required")
	ErrInvalidUserRef = errors.New("ids must be positive integers")

	// ErrInvitationMismatch is returned when an invitation batch names more
	// than one film, or a film other than the one addressed.
	ErrInvitationMismatch = errors.New("invitation film id does not match the addressed film")
)

// Normalize trims the title and drops private-only fields from public films.
func (in FilmInput) Normalize() FilmInput {
	in.Title = strings.TrimSpace(in.Title)
	if !in.Private {
		in.WatchDate, in.Rating, in.Favorite = nil, nil, nil
	}
	return in
}

// Validate checks the creation payload.
func (in FilmInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	return validateOptional(in.WatchDate, in.Rating)
}

// Validate checks the update payload.
func (u FilmUpdate) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return ErrTitleRequired
	}
	return validateOptional(u.WatchDate, u.Rating)
}

func validateOptional(date *string, rating *int) error {
	if date != nil {
		if _, err := time.Parse(DateLayout, *date); err != nil {
			return ErrInvalidDate
		}
	}
	if rating != nil && (*rating < 0 || *rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. The
// stores return them unwrapped; storage failures are wrapped with
// context and must be treated as unexpected.
package repository

import "errors"

// Not found conditions.
var (
	// ErrNoFilms is returned when the addressed film does not exist.
	ErrNoFilms = errors.New("film does not exist")
	// ErrNoPublicFilm is returned when the film exists but is private and
	// was addressed through the public path.
	ErrNoPublicFilm = errors.New("film is not public")
	// ErrNoPrivateFilm is returned when the film exists but is public and
	// was addressed through the private path.
	ErrNoPrivateFilm = errors.New("film is not private")
	// ErrNoReviews is returned when no review exists for the
	// (film, reviewer) pair.
	ErrNoReviews = errors.New("review does not exist")
	// ErrUserNotFound is returned by user lookups.
	ErrUserNotFound = errors.New("user not found")
)

// Forbidden conditions.  Handlers should translate these into an
// HTTP 403 response.
var (
	ErrUserNotOwner    = errors.New("user is not the owner of the film")
	ErrUserNotReviewer = errors.New("user is not the reviewer of the film")
)

// Conflict and state conditions.  Handlers should translate these into an
// HTTP 409 response.
var (
	// ErrAlreadyCompleted is returned when deleting or re-completing a
	// review that was completed.
	ErrAlreadyCompleted = errors.New("review already completed")
	// ErrExistingReview is returned when an invitation collides with an
	// existing (film, reviewer) pair.
	ErrExistingReview = errors.New("review already exists for this film and reviewer")
	// ErrPrivateFilm is returned when inviting reviewers to a private film.
	ErrPrivateFilm = errors.New("private films cannot be reviewed")
	// ErrVisibilityImmutable is returned when an update tries to change a
	// film's visibility.
	ErrVisibilityImmutable = errors.New("film visibility cannot be changed")
	// ErrEmailExists is returned when registering an email twice.
	ErrEmailExists = errors.New("email already exists")
)

// ErrReviewerNotUser is returned when an invitation names an id that does
// not resolve to a user.
var ErrReviewerNotUser = errors.New("reviewer id is not a user")

// ErrCompletionRequired is returned when a review update does not set
// completed to true.  It is a validation failure, not a conflict.
var ErrCompletionRequired = errors.New("completed must be set to true")

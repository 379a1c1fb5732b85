// Package authz holds the ownership and visibility predicates consulted by
// the film and review stores before they mutate anything.  The functions
// work on rows that were already read; they perform no I/O.
package authz

import "github.com/iliyamo/film-review/internal/model"

// AccessPath is the visibility a caller addressed a film through.
type AccessPath int

const (
	PublicPath AccessPath = iota
	PrivatePath
)

// Private reports whether the path addresses private films.
func (p AccessPath) Private() bool { return p == PrivatePath }

// IsOwner reports whether actorID owns the film.
func IsOwner(f model.Film, actorID uint64) bool {
	return actorID != 0 && f.Owner == actorID
}

// MatchesVisibility reports whether the film is reachable through path.
func MatchesVisibility(f model.Film, path AccessPath) bool {
	return f.Private == path.Private()
}

// IsInvitedReviewer reports whether actorID is the reviewer the review was
// issued to.
func IsInvitedReviewer(r model.Review, actorID uint64) bool {
	return actorID != 0 && r.ReviewerID == actorID
}

// KeepsVisibility reports whether a patch leaves the film's visibility
// untouched.  An absent flag keeps it.
func KeepsVisibility(u model.FilmUpdate, path AccessPath) bool {
	return u.Private == nil || *u.Private == path.Private()
}

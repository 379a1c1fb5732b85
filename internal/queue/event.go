// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ReviewEventType names what happened to a film's reviews.
type ReviewEventType string

const (
	ReviewsIssued     ReviewEventType = "reviews.issued"
	ReviewCompleted   ReviewEventType = "review.completed"
	ReviewWithdrawn   ReviewEventType = "review.withdrawn"
	PublicFilmDeleted ReviewEventType = "film.deleted"
)

// ReviewEvent is published after a review-related change has committed.  It
// carries enough for consumers to log or notify without querying the
// primary database.
type ReviewEvent struct {
	Type        ReviewEventType `json:"type"`
	FilmID      uint64          `json:"filmId"`
	ReviewerIDs []uint64        `json:"reviewerIds,omitempty"`
	ActorID     uint64          `json:"actorId"`
	At          time.Time       `json:"at"`
}

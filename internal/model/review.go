package model

import "unicode/utf8"

// MaxReviewLength bounds the review text in characters.
const MaxReviewLength = 1000

// Review represents a row in the `reviews` table, keyed by (FilmID,
// ReviewerID).  A review is issued with Completed=false and moves to
// Completed=true exactly once, by the invited reviewer.
type Review struct {
	FilmID     uint64  `json:"filmId"`
	ReviewerID uint64  `json:"reviewerId"`
	Completed  bool    `json:"completed"`
	ReviewDate *string `json:"reviewDate,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Review     *string `json:"review,omitempty"`
}

// Invitation asks the given user to review the given public film.
type Invitation struct {
	FilmID     uint64 `json:"filmId"`
	ReviewerID uint64 `json:"reviewerId"`
}

// ReviewUpdate completes a review.  Completed must be present and true;
// the remaining fields are written only when present.
type ReviewUpdate struct {
	Completed  *bool   `json:"completed"`
	ReviewDate *string `json:"reviewDate,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Review     *string `json:"review,omitempty"`
}

// Validate checks field formats; the completed flag is checked by callers
// because absence and false map to different failures.
func (u ReviewUpdate) Validate() error {
	if err := validateOptional(u.ReviewDate, u.Rating); err != nil {
		return err
	}
	if u.Review != nil && utf8.RuneCountInString(*u.Review) > MaxReviewLength {
		return ErrReviewTooLong
	}
	return nil
}

// ValidateInvitations checks that the batch is non-empty, that every id is
// positive and that every invitation targets filmID.
func ValidateInvitations(filmID uint64, invitations []Invitation) error {
	if len(invitations) == 0 {
		return ErrNoInvitations
	}
	for _, inv := range invitations {
		if inv.FilmID == 0 || inv.ReviewerID == 0 {
			return ErrInvalidUserRef
		}
		if inv.FilmID != filmID {
			return ErrInvitationMismatch
		}
	}
	return nil
}

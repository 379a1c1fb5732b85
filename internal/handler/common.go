package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/film-review/internal/middleware"
	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/repository"
	"github.com/iliyamo/film-review/internal/service"
)

var errInvalidUserID = errors.New("invalid user_id in context")

// getUserID returns the authenticated caller stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errInvalidUserID
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// page is the wire form of a listing.  The collection is emitted under the
// key given by the concrete response type.
type page struct {
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalItems  int    `json:"totalItems"`
	Next        string `json:"next,omitempty"`
}

type filmPage struct {
	page
	Films []model.Film `json:"films"`
}

type reviewPage struct {
	page
	Reviews []model.Review `json:"reviews"`
}

// pageOf converts a listing into its metadata; base is the listing path the
// next link points at.
func pageOf[T any](l service.Listing[T], base string) page {
	p := page{TotalPages: l.TotalPages, CurrentPage: l.CurrentPage, TotalItems: l.TotalItems}
	if l.Next > 0 {
		p.Next = base + "?pageNo=" + strconv.Itoa(l.Next)
	}
	return p
}

// writeError maps the named failure conditions to HTTP responses.  Anything
// else is a storage failure: it is logged and reported as a bare 500.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNoFilms),
		errors.Is(err, repository.ErrNoPublicFilm),
		errors.Is(err, repository.ErrNoPrivateFilm),
		errors.Is(err, repository.ErrNoReviews),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrReviewerNotUser),
		errors.Is(err, pagination.ErrPageOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrUserNotOwner),
		errors.Is(err, repository.ErrUserNotReviewer):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrAlreadyCompleted),
		errors.Is(err, repository.ErrExistingReview),
		errors.Is(err, repository.ErrPrivateFilm),
		errors.Is(err, repository.ErrVisibilityImmutable),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, model.ErrInvitationMismatch):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrCompletionRequired),
		errors.Is(err, model.ErrTitleRequired),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidRating),
		errors.Is(err, model.ErrReviewTooLong),
		errors.Is(err, model.ErrNoInvitations),
		errors.Is(err, model.ErrInvalidUserRef):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Str("request_id", c.Request().Header.Get(middleware.RequestIDHeader)).
			Msg("request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

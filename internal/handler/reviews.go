package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/service"
)

// ReviewHandler serves the /api/films/public/:filmId/reviews routes.
type ReviewHandler struct {
	Reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	if reviews == nil {
		panic("nil review service passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews}
}

// List handles GET /api/films/public/:filmId/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	filmID, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	l, err := h.Reviews.ListForFilm(c.Request().Context(), filmID, pagination.ParsePageNo(c.QueryParam("pageNo")))
	if err != nil {
		return writeError(c, err)
	}
	base := "/api/films/public/" + c.Param("filmId") + "/reviews"
	return c.JSON(http.StatusOK, reviewPage{page: pageOf(l, base), Reviews: l.Items})
}

// Issue handles POST /api/films/public/:filmId/reviews.  The body is an
// array of invitations, all naming the film in the path.
func (h *ReviewHandler) Issue(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	filmID, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	var invs []model.Invitation
	if err := json.NewDecoder(c.Request().Body).Decode(&invs); err != nil {
		return badRequest(c, "the request body must be an array of review objects")
	}
	if err := model.ValidateInvitations(filmID, invs); err != nil {
		return writeError(c, err)
	}
	out, err := h.Reviews.Issue(c.Request().Context(), uid, invs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Get handles GET /api/films/public/:filmId/reviews/:reviewerId.
func (h *ReviewHandler) Get(c echo.Context) error {
	filmID, ok1 := parseID(c, "filmId")
	reviewerID, ok2 := parseID(c, "reviewerId")
	if !ok1 || !ok2 {
		return badRequest(c, "invalid filmId or reviewerId")
	}
	r, err := h.Reviews.Get(c.Request().Context(), filmID, reviewerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Complete handles PUT /api/films/public/:filmId/reviews/:reviewerId.  The
// route is guarded by RequireSelf("reviewerId").
func (h *ReviewHandler) Complete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	filmID, ok1 := parseID(c, "filmId")
	reviewerID, ok2 := parseID(c, "reviewerId")
	if !ok1 || !ok2 {
		return badRequest(c, "invalid filmId or reviewerId")
	}
	var u model.ReviewUpdate
	if err := c.Bind(&u); err != nil {
		return badRequest(c, "invalid body")
	}
	if u.Completed == nil {
		return badRequest(c, "the completed property is absent")
	}
	if !*u.Completed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "the completed property is false, but it should be set to true"})
	}
	if err := u.Validate(); err != nil {
		return writeError(c, err)
	}
	if _, err := h.Reviews.Complete(c.Request().Context(), filmID, reviewerID, uid, u); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/films/public/:filmId/reviews/:reviewerId.
func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	filmID, ok1 := parseID(c, "filmId")
	reviewerID, ok2 := parseID(c, "reviewerId")
	if !ok1 || !ok2 {
		return badRequest(c, "invalid filmId or reviewerId")
	}
	if err := h.Reviews.Delete(c.Request().Context(), filmID, reviewerID, uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

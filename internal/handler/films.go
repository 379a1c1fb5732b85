package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-review/internal/authz"
	"github.com/iliyamo/film-review/internal/model"
	"github.com/iliyamo/film-review/internal/pagination"
	"github.com/iliyamo/film-review/internal/service"
)

// FilmHandler serves the /api/films routes.
type FilmHandler struct {
	Films *service.FilmService
}

func NewFilmHandler(films *service.FilmService) *FilmHandler {
	if films == nil {
		panic("nil film service passed to NewFilmHandler")
	}
	return &FilmHandler{Films: films}
}

// Create handles POST /api/films.
func (h *FilmHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var in model.FilmInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return writeError(c, err)
	}
	f, err := h.Films.Create(c.Request().Context(), in, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// ListPublic handles GET /api/films/public.
func (h *FilmHandler) ListPublic(c echo.Context) error {
	l, err := h.Films.ListPublic(c.Request().Context(), pagination.ParsePageNo(c.QueryParam("pageNo")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, filmPage{page: pageOf(l, "/api/films/public"), Films: l.Items})
}

// ListPrivate handles GET /api/films/private.
func (h *FilmHandler) ListPrivate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	l, err := h.Films.ListPrivate(c.Request().Context(), uid, pagination.ParsePageNo(c.QueryParam("pageNo")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, filmPage{page: pageOf(l, "/api/films/private"), Films: l.Items})
}

// ListInvited handles GET /api/films/public/invited.
func (h *FilmHandler) ListInvited(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	l, err := h.Films.ListInvited(c.Request().Context(), uid, pagination.ParsePageNo(c.QueryParam("pageNo")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, filmPage{page: pageOf(l, "/api/films/public/invited"), Films: l.Items})
}

// GetPublic handles GET /api/films/public/:filmId.
func (h *FilmHandler) GetPublic(c echo.Context) error {
	id, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	f, err := h.Films.GetPublic(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// GetPrivate handles GET /api/films/private/:filmId.
func (h *FilmHandler) GetPrivate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	f, err := h.Films.GetPrivate(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// UpdatePublic handles PUT /api/films/public/:filmId.
func (h *FilmHandler) UpdatePublic(c echo.Context) error { return h.update(c, authz.PublicPath) }

// UpdatePrivate handles PUT /api/films/private/:filmId.
func (h *FilmHandler) UpdatePrivate(c echo.Context) error { return h.update(c, authz.PrivatePath) }

func (h *FilmHandler) update(c echo.Context, path authz.AccessPath) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	var u model.FilmUpdate
	if err := c.Bind(&u); err != nil {
		return badRequest(c, "invalid body")
	}
	if !authz.KeepsVisibility(u, path) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change visibility"})
	}
	if err := u.Validate(); err != nil {
		return writeError(c, err)
	}
	if err := h.Films.Update(c.Request().Context(), id, path, uid, u); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePublic handles DELETE /api/films/public/:filmId.
func (h *FilmHandler) DeletePublic(c echo.Context) error { return h.delete(c, authz.PublicPath) }

// DeletePrivate handles DELETE /api/films/private/:filmId.
func (h *FilmHandler) DeletePrivate(c echo.Context) error { return h.delete(c, authz.PrivatePath) }

func (h *FilmHandler) delete(c echo.Context, path authz.AccessPath) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "filmId")
	if !ok {
		return badRequest(c, "invalid filmId")
	}
	if err := h.Films.Delete(c.Request().Context(), id, path, uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// RequireSelf returns a middleware that lets the request through only when
// the path parameter named param equals the authenticated user's id.  It
// must run after JWTAuth.  Mismatches are aborted with 403 Forbidden.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			id, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil || id != uid {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "the " + param + " is not the id of the requesting user"})
			}
			return next(c)
		}
	}
}

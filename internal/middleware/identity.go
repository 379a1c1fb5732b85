package middleware

// identity.go defines helpers shared across middleware files for reading the
// authenticated user that JWTAuth stored in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the context key JWTAuth stores the caller's id under.
const UserIDKey = "user_id"

// UserID returns the authenticated caller's id, or false for guests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}

// userKey renders the caller for rate limit keys and logs.  It returns
// "guest" when no user is authenticated.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}

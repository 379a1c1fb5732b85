package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// API handles GET /api, the entry point of the REST interface.  It lists the
// collections a client can navigate to.
func API(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name": "film-review",
		"links": map[string]link{
			"self":            {Href: "/api"},
			"films":           {Href: "/api/films", Method: http.MethodPost},
			"publicFilms":     {Href: "/api/films/public"},
			"privateFilms":    {Href: "/api/films/private"},
			"invitedFilms":    {Href: "/api/films/public/invited"},
			"users":           {Href: "/api/users"},
			"authenticator":   {Href: "/api/users/authenticator", Method: http.MethodPost},
			"refresh":         {Href: "/api/users/authenticator/refresh", Method: http.MethodPost},
			"currentSessions": {Href: "/api/users/authenticator/current", Method: http.MethodDelete},
		},
	})
}

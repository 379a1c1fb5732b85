package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/film-review/internal/config"
	"github.com/iliyamo/film-review/internal/handler"
	"github.com/iliyamo/film-review/internal/middleware"
)

// Handlers groups everything RegisterAPI wires into routes.
type Handlers struct {
	Films   *handler.FilmHandler
	Reviews *handler.ReviewHandler
	Users   *handler.UserHandler
	Auth    *handler.AuthHandler
}

// Options carries the cross-cutting settings for the /api tree.  A nil
// Redis client disables both the response cache and the rate limiter.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// RegisterRoutes registers routes outside the /api tree.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the REST interface under /api.  Public reads are
// cached until the next committed write; every /api route is rate limited
// per caller.
func RegisterAPI(e *echo.Echo, h Handlers, o Options) {
	auth := middleware.JWTAuth(o.JWTSecret)
	cache := middleware.NewRedisCache(o.Cache, o.Redis)

	api := e.Group("/api", middleware.Identify(o.JWTSecret), middleware.NewTokenBucket(o.RateLimit, o.Redis))
	api.GET("", handler.API)

	// films
	api.POST("/films", h.Films.Create, auth)
	api.GET("/films/public", h.Films.ListPublic, cache)
	api.GET("/films/public/invited", h.Films.ListInvited, auth)
	api.GET("/films/public/:filmId", h.Films.GetPublic, cache)
	api.PUT("/films/public/:filmId", h.Films.UpdatePublic, auth)
	api.DELETE("/films/public/:filmId", h.Films.DeletePublic, auth)
	api.GET("/films/private", h.Films.ListPrivate, auth)
	api.GET("/films/private/:filmId", h.Films.GetPrivate, auth)
	api.PUT("/films/private/:filmId", h.Films.UpdatePrivate, auth)
	api.DELETE("/films/private/:filmId", h.Films.DeletePrivate, auth)

	// reviews
	api.GET("/films/public/:filmId/reviews", h.Reviews.List, cache)
	api.POST("/films/public/:filmId/reviews", h.Reviews.Issue, auth)
	api.GET("/films/public/:filmId/reviews/:reviewerId", h.Reviews.Get, cache)
	api.PUT("/films/public/:filmId/reviews/:reviewerId", h.Reviews.Complete, auth, middleware.RequireSelf("reviewerId"))
	api.DELETE("/films/public/:filmId/reviews/:reviewerId", h.Reviews.Delete, auth)

	// users and the authenticator
	api.POST("/users", h.Auth.Register)
	api.GET("/users", h.Users.List, auth)
	api.GET("/users/:userId", h.Users.Get, auth)
	api.POST("/users/authenticator", h.Auth.Login)
	api.POST("/users/authenticator/refresh", h.Auth.Refresh)
	api.DELETE("/users/authenticator/current", h.Auth.Logout, auth)
}

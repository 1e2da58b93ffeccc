package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/folio-social/folio-api/internal/config"
	"github.com/folio-social/folio-api/internal/handler"
	"github.com/folio-social/folio-api/internal/middleware"
)

// Handlers bundles every handler the router wires up. main builds the
// concrete handlers against the MySQL repositories; tests can register
// a subset with fakes.
type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	Books  *handler.BookHandler
	Genres *handler.GenreHandler
	Social *handler.SocialHandler
	Review *handler.ReviewHandler
	Lists  *handler.ListHandler
	Recs   *handler.RecommendationHandler
}

// Register wires all routes onto the Echo instance. Route groups map
// to the auth requirements: public, optionally-personalized public
// reads, authenticated, and admin.
func Register(e *echo.Echo, cfg config.Config, ledger middleware.Ledger, h Handlers) {
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestID())

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Unauthenticated auth operations.
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Logout skips the revocation lookup so that revoking an
	// already-revoked token still returns 200.
	api.POST("/auth/logout", h.Auth.Logout, middleware.RequireSignedToken(cfg.JWTSecret))

	// Public catalog reads. The likes/rating aggregates accept an
	// optional bearer token to personalize the response; a missing or
	// invalid token degrades to the anonymous view instead of erroring.
	optional := api.Group("", middleware.OptionalAuth(cfg.JWTSecret, ledger))
	optional.GET("/books", h.Books.List)
	optional.GET("/books/:id", h.Books.Get)
	optional.GET("/books/:id/comments", h.Review.ListComments)
	optional.GET("/books/:id/likes", h.Social.BookLikes)
	optional.GET("/books/:id/rating", h.Social.BookRating)
	optional.GET("/genres", h.Genres.List)
	optional.GET("/users/:id", h.Users.Get)
	optional.GET("/users/:id/followers", h.Social.FollowersOf)
	optional.GET("/users/:id/following", h.Social.FollowingOf)

	// Everything below requires a valid, non-revoked token.
	auth := api.Group("", middleware.RequireAuth(cfg.JWTSecret, ledger))
	auth.PUT("/users/me", h.Users.UpdateMe)

	auth.POST("/books/:id/like", h.Social.LikeBook)
	auth.POST("/comments/:id/like", h.Social.LikeComment)
	auth.POST("/users/:followingId/follow", h.Social.Follow)
	auth.DELETE("/users/:followingId/follow", h.Social.Unfollow)

	auth.POST("/books/:id/review", h.Review.CreateReview)
	auth.PUT("/comments/:commentId", h.Review.UpdateComment)
	auth.DELETE("/comments/:id", h.Review.DeleteComment)

	auth.GET("/lists", h.Lists.Mine)
	auth.POST("/lists", h.Lists.Create)
	auth.POST("/lists/:id/books", h.Lists.AddBook)
	auth.DELETE("/lists/:id/books/:bookId", h.Lists.RemoveBook)
	auth.DELETE("/lists/:id", h.Lists.Delete)

	auth.GET("/recommendations", h.Recs.Get)

	// Catalog mutations are gated on the admin sentinel email.
	admin := auth.Group("", middleware.RequireAdmin(cfg.AdminEmail))
	admin.POST("/books", h.Books.Create)
	admin.PUT("/books/:id", h.Books.Update)
	admin.DELETE("/books/:id", h.Books.Delete)
	admin.POST("/genres", h.Genres.Create)
}

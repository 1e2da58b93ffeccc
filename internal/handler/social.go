package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

// LikeStore is the toggle engine plus its aggregate reads.
type LikeStore interface {
	ToggleBookLike(ctx context.Context, userID, bookID uint64) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID uint64) (bool, error)
	CountBookLikes(ctx context.Context, bookID uint64) (int, error)
	UserLikedBook(ctx context.Context, userID, bookID uint64) (bool, error)
}

// FollowStore covers the follows relation.
type FollowStore interface {
	Follow(ctx context.Context, followerID, followingID uint64) error
	Unfollow(ctx context.Context, followerID, followingID uint64) error
	Followers(ctx context.Context, userID uint64) ([]model.Profile, error)
	Following(ctx context.Context, userID uint64) ([]model.Profile, error)
}

// RatingReader is the aggregate side of ratings, used by the public
// rating endpoint.
type RatingReader interface {
	BookRating(ctx context.Context, bookID uint64) (*float64, int, error)
	UserRating(ctx context.Context, userID, bookID uint64) (*int, error)
}

// SocialHandler serves likes, follows and the public social
// aggregates.
type SocialHandler struct {
	Likes   LikeStore
	Follows FollowStore
	Ratings RatingReader
}

func NewSocialHandler(l LikeStore, f FollowStore, r RatingReader) *SocialHandler {
	return &SocialHandler{Likes: l, Follows: f, Ratings: r}
}

// LikeBook toggles the caller's like on a book. 201 carries
// liked=true (the like was created), 200 carries liked=false (it was
// removed). Losing a race against a concurrent toggle of the same
// pair is a retry-able 409, never a 500.
func (h *SocialHandler) LikeBook(c echo.Context) error {
	return h.toggleLike(c, "id", h.Likes.ToggleBookLike)
}

// LikeComment is the comment-scoped variant of LikeBook.
func (h *SocialHandler) LikeComment(c echo.Context) error {
	return h.toggleLike(c, "id", h.Likes.ToggleCommentLike)
}

func (h *SocialHandler) toggleLike(c echo.Context, param string, toggle func(context.Context, uint64, uint64) (bool, error)) error {
	subjectID, ok := pathID(c, param)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	liked, err := toggle(ctx, claims.ID, subjectID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "tente novamente"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "não encontrado"})
		}
		logError(c, err, "toggle like failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	status := http.StatusOK
	if liked {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"liked": liked})
}

// Follow creates the caller→target relation. Self-follow is a 400
// before any store access, a duplicate follow is a 409, a missing
// target user a 404.
func (h *SocialHandler) Follow(c echo.Context) error {
	followingID, ok := pathID(c, "followingId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Follows.Follow(ctx, claims.ID, followingID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfFollow):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "não é possível seguir a si mesmo"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "já está seguindo"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuário não encontrado"})
		}
		logError(c, err, "follow failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "seguindo com sucesso"})
}

// Unfollow removes the relation; 404 when it does not exist.
func (h *SocialHandler) Unfollow(c echo.Context) error {
	followingID, ok := pathID(c, "followingId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Follows.Unfollow(ctx, claims.ID, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "não está seguindo"})
		}
		logError(c, err, "unfollow failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deixou de seguir"})
}

// BookLikes returns the like total for a book. When a valid bearer
// token accompanies the request the response also carries userLiked;
// an absent or invalid token degrades to the anonymous view.
func (h *SocialHandler) BookLikes(c echo.Context) error {
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, err := h.Likes.CountBookLikes(ctx, bookID)
	if err != nil {
		logError(c, err, "count likes failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	resp := echo.Map{"likes": total}
	if claims := middleware.ClaimsFrom(c); claims != nil {
		liked, err := h.Likes.UserLikedBook(ctx, claims.ID, bookID)
		if err != nil {
			logError(c, err, "user liked lookup failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
		}
		resp["userLiked"] = liked
	}
	return c.JSON(http.StatusOK, resp)
}

// BookRating returns the average nota and rating count for a book,
// plus the caller's own nota when authenticated. media is null when
// nobody rated the book yet.
func (h *SocialHandler) BookRating(c echo.Context) error {
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	media, total, err := h.Ratings.BookRating(ctx, bookID)
	if err != nil {
		logError(c, err, "book rating failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	resp := echo.Map{"media": media, "total": total}
	if claims := middleware.ClaimsFrom(c); claims != nil {
		nota, err := h.Ratings.UserRating(ctx, claims.ID, bookID)
		if err != nil {
			logError(c, err, "user rating lookup failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
		}
		resp["userNota"] = nota
	}
	return c.JSON(http.StatusOK, resp)
}

// FollowersOf lists the followers of a user.
func (h *SocialHandler) FollowersOf(c echo.Context) error {
	return h.listRelation(c, h.Follows.Followers)
}

// FollowingOf lists who a user follows.
func (h *SocialHandler) FollowingOf(c echo.Context) error {
	return h.listRelation(c, h.Follows.Following)
}

func (h *SocialHandler) listRelation(c echo.Context, list func(context.Context, uint64) ([]model.Profile, error)) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := list(ctx, userID)
	if err != nil {
		logError(c, err, "list relation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, profiles)
}

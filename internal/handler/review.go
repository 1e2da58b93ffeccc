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

// ReviewStore is the comment+rating slice of the repository layer.
type ReviewStore interface {
	CreateReview(ctx context.Context, userID, bookID uint64, texto string, nota int) (uint64, error)
	UpdateComment(ctx context.Context, userID, commentID uint64, texto string, nota *int) error
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	CommentsByBook(ctx context.Context, bookID uint64) ([]model.Comment, error)
}

type ReviewHandler struct {
	Reviews ReviewStore
}

func NewReviewHandler(r ReviewStore) *ReviewHandler { return &ReviewHandler{Reviews: r} }

type reviewReq struct {
	Texto string `json:"texto" validate:"required,max=2000"`
	Nota  int    `json:"nota" validate:"required,min=1,max=5"`
}

type commentUpdateReq struct {
	Texto string `json:"texto" validate:"required,max=2000"`
	Nota  *int   `json:"nota" validate:"omitempty,min=1,max=5"`
}

type commentResp struct {
	ID        uint64    `json:"id"`
	BookID    uint64    `json:"livroId"`
	UserID    uint64    `json:"usuarioId"`
	Autor     string    `json:"autor"`
	Texto     string    `json:"texto"`
	Nota      *int      `json:"nota"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"criadoEm"`
}

// CreateReview stores a comment and the author's rating for the book
// in one transaction. Re-reviewing overwrites the nota (one rating row
// per user per book) while each call adds a new comment.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Reviews.CreateReview(ctx, claims.ID, bookID, req.Texto, req.Nota)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "livro não encontrado"})
		}
		logError(c, err, "create review failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "avaliação criada com sucesso",
		"comentarioId": id,
	})
}

// UpdateComment edits the caller's own comment; 403 when the comment
// belongs to someone else, 404 when it does not exist. When a nota
// accompanies the edit it upserts the paired rating in the same
// transaction.
func (h *ReviewHandler) UpdateComment(c echo.Context) error {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var req commentUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reviews.UpdateComment(ctx, claims.ID, commentID, req.Texto, req.Nota); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comentário não encontrado"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
		}
		logError(c, err, "update comment failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comentário atualizado"})
}

// DeleteComment removes the caller's own comment with the same
// 403/404 distinction as UpdateComment.
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	commentID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reviews.DeleteComment(ctx, claims.ID, commentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comentário não encontrado"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
		}
		logError(c, err, "delete comment failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comentário removido"})
}

// ListComments returns a book's comments with author names, like
// counts and the loosely-paired nota (null when the author never rated
// the book).
func (h *ReviewHandler) ListComments(c echo.Context) error {
	bookID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Reviews.CommentsByBook(ctx, bookID)
	if err != nil {
		logError(c, err, "list comments failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentResp{
			ID:        cm.ID,
			BookID:    cm.BookID,
			UserID:    cm.UserID,
			Autor:     cm.AutorNome,
			Texto:     cm.Texto,
			Nota:      cm.Nota,
			Likes:     cm.Likes,
			CreatedAt: cm.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

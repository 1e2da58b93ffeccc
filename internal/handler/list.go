package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

// ListStore covers reading lists and their book links.
type ListStore interface {
	Create(ctx context.Context, userID uint64, nome string) (uint64, error)
	ByUser(ctx context.Context, userID uint64) ([]model.ReadingList, error)
	AddBook(ctx context.Context, userID, listID, bookID uint64) error
	RemoveBook(ctx context.Context, userID, listID, bookID uint64) error
	Delete(ctx context.Context, userID, listID uint64) error
}

type ListHandler struct {
	Lists ListStore
}

func NewListHandler(l ListStore) *ListHandler { return &ListHandler{Lists: l} }

type listReq struct {
	Nome string `json:"nome" validate:"required,max=100"`
}
type listAddBookReq struct {
	LivroID uint64 `json:"livroId" validate:"required,min=1"`
}

type listResp struct {
	ID     uint64 `json:"id"`
	Nome   string `json:"nome"`
	Livros int    `json:"livros"`
}

// Create adds a reading list; a second list with the same name for the
// same owner is a 409.
func (h *ListHandler) Create(c echo.Context) error {
	var req listReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Lists.Create(ctx, claims.ID, req.Nome)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lista já existe"})
		}
		logError(c, err, "create list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "lista criada", "listaId": id})
}

// Mine returns the caller's lists.
func (h *ListHandler) Mine(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lists, err := h.Lists.ByUser(ctx, claims.ID)
	if err != nil {
		logError(c, err, "list reading lists failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	out := make([]listResp, 0, len(lists))
	for _, l := range lists {
		out = append(out, listResp{ID: l.ID, Nome: l.Nome, Livros: l.Livros})
	}
	return c.JSON(http.StatusOK, out)
}

// AddBook links a book into one of the caller's lists; a book already
// in the list is a 409.
func (h *ListHandler) AddBook(c echo.Context) error {
	listID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var req listAddBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.AddBook(ctx, claims.ID, listID, req.LivroID); err != nil {
		return h.listError(c, err, "add book to list failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "livro adicionado à lista"})
}

// RemoveBook unlinks a book; absent link is a 404.
func (h *ListHandler) RemoveBook(c echo.Context) error {
	listID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.RemoveBook(ctx, claims.ID, listID, bookID); err != nil {
		return h.listError(c, err, "remove book from list failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "livro removido da lista"})
}

// Delete removes one of the caller's lists.
func (h *ListHandler) Delete(c echo.Context) error {
	listID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.Delete(ctx, claims.ID, listID); err != nil {
		return h.listError(c, err, "delete list failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "lista removida"})
}

func (h *ListHandler) listError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "não encontrado"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "livro já está na lista"})
	}
	logError(c, err, msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
}

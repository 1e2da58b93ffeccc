package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

// BookStore is the catalog slice of the repository layer.
type BookStore interface {
	List(ctx context.Context) ([]model.Book, error)
	GetDetail(ctx context.Context, id uint64) (model.BookDetail, error)
	Create(ctx context.Context, b *model.Book, genreIDs []uint64) error
	Update(ctx context.Context, b *model.Book, genreIDs []uint64) error
	Delete(ctx context.Context, id uint64) error
}

type BookHandler struct {
	Books BookStore
}

func NewBookHandler(b BookStore) *BookHandler { return &BookHandler{Books: b} }

type bookReq struct {
	Titulo        string   `json:"titulo" validate:"required,max=255"`
	Autor         string   `json:"autor" validate:"required,max=255"`
	Sinopse       string   `json:"sinopse" validate:"max=5000"`
	AnoPublicacao int      `json:"anoPublicacao" validate:"omitempty,min=0"`
	Generos       []uint64 `json:"generos" validate:"omitempty,dive,min=1"`
}

type bookResp struct {
	ID            uint64    `json:"id"`
	Titulo        string    `json:"titulo"`
	Autor         string    `json:"autor"`
	Sinopse       string    `json:"sinopse"`
	AnoPublicacao int       `json:"anoPublicacao"`
	CreatedAt     time.Time `json:"criadoEm"`
}

type bookDetailResp struct {
	bookResp
	Generos    []model.Genre `json:"generos"`
	Likes      int           `json:"likes"`
	MediaNota  *float64      `json:"mediaNota"`
	Avaliacoes int           `json:"avaliacoes"`
}

// List returns the catalog.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.List(ctx)
	if err != nil {
		logError(c, err, "list books failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	out := make([]bookResp, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one book with its genres and social aggregates.
func (h *BookHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Books.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "livro não encontrado"})
		}
		logError(c, err, "get book failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, bookDetailResp{
		bookResp:   toBookResp(d.Book),
		Generos:    d.Genres,
		Likes:      d.Likes,
		MediaNota:  d.MediaNota,
		Avaliacoes: d.Avaliacoes,
	})
}

// Create adds a book and its genre links atomically. Admin only.
func (h *BookHandler) Create(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b := model.Book{
		Titulo:        req.Titulo,
		Autor:         req.Autor,
		Sinopse:       req.Sinopse,
		AnoPublicacao: req.AnoPublicacao,
	}
	if err := h.Books.Create(ctx, &b, req.Generos); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gênero não encontrado"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "gênero duplicado"})
		}
		logError(c, err, "create book failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "livro criado com sucesso", "livroId": b.ID})
}

// Update rewrites a book and replaces its genre links. Admin only.
func (h *BookHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b := model.Book{
		ID:            id,
		Titulo:        req.Titulo,
		Autor:         req.Autor,
		Sinopse:       req.Sinopse,
		AnoPublicacao: req.AnoPublicacao,
	}
	if err := h.Books.Update(ctx, &b, req.Generos); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "livro não encontrado"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "gênero duplicado"})
		}
		logError(c, err, "update book failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "livro atualizado"})
}

// Delete removes a book. Admin only.
func (h *BookHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Books.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "livro não encontrado"})
		}
		logError(c, err, "delete book failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "livro removido"})
}

func toBookResp(b model.Book) bookResp {
	return bookResp{
		ID:            b.ID,
		Titulo:        b.Titulo,
		Autor:         b.Autor,
		Sinopse:       b.Sinopse,
		AnoPublicacao: b.AnoPublicacao,
		CreatedAt:     b.CreatedAt,
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

type GenreStore interface {
	List(ctx context.Context) ([]model.Genre, error)
	Create(ctx context.Context, nome string) (uint64, error)
}

type GenreHandler struct {
	Genres GenreStore
}

func NewGenreHandler(g GenreStore) *GenreHandler { return &GenreHandler{Genres: g} }

type genreReq struct {
	Nome string `json:"nome" validate:"required,max=100"`
}

func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		logError(c, err, "list genres failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, genres)
}

// Create adds a genre; duplicate names are a 409. Admin only.
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Genres.Create(ctx, req.Nome)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "gênero já existe"})
		}
		logError(c, err, "create genre failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "gênero criado", "generoId": id})
}

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

// ProfileStore is the public-profile slice of the user repository.
type ProfileStore interface {
	Profile(ctx context.Context, id uint64) (model.Profile, error)
	UpdateNome(ctx context.Context, id uint64, nome string) error
}

type UserHandler struct {
	Users ProfileStore
}

func NewUserHandler(u ProfileStore) *UserHandler { return &UserHandler{Users: u} }

type profileUpdateReq struct {
	Nome string `json:"nome" validate:"required,min=2,max=100"`
}

// Get returns a user's public profile with follow counts.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Users.Profile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuário não encontrado"})
		}
		logError(c, err, "load profile failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateMe changes the caller's display name. Only the name is
// mutable through the profile; email and password have no update path
// here.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req profileUpdateReq
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

	if err := h.Users.UpdateNome(ctx, claims.ID, req.Nome); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuário não encontrado"})
		}
		logError(c, err, "update profile failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "perfil atualizado"})
}

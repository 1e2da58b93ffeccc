package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/auth"
	"github.com/folio-social/folio-api/internal/config"
	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
	"github.com/folio-social/folio-api/internal/repository"
)

// UserStore is the slice of the user repository the auth endpoints
// need. Keeping it an interface lets tests run against an in-memory
// fake; repository.UserRepo is the production implementation.
type UserStore interface {
	Create(ctx context.Context, nome, email, senha string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// TokenRevoker is the write side of the revocation ledger.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenRevoker
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenRevoker) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Nome  string `json:"nome" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=6"`
}
type loginReq struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}
type usuarioPart struct {
	ID    uint64 `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates a user. The session starts with an explicit login;
// no token is issued here.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nome = strings.TrimSpace(req.Nome)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Nome, req.Email, req.Senha, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email já cadastrado"})
		}
		logError(c, err, "create user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "usuário criado com sucesso",
		"usuariosId": uid,
	})
}

// Login verifies credentials and issues a session token valid for the
// configured TTL (one hour by default).
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "corpo inválido"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dados inválidos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciais inválidas"})
		}
		logError(c, err, "load user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Senha) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciais inválidas"})
	}

	sess, err := auth.Issue(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		logError(c, err, "issue token failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "login realizado com sucesso",
		"token":    sess.Token,
		"usuarios": usuarioPart{ID: u.ID, Nome: u.Nome, Email: u.Email, Role: u.Role},
	})
}

// Logout writes the presented token into the revocation ledger with
// its own natural expiry. The route sits behind the signed-token gate,
// which verifies the token but does not consult the ledger; a token
// that is already revoked still reaches the handler, and the duplicate
// revoke reports success, because the end-state is the same either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	raw := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if claims == nil || raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token não fornecido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Tokens.Revoke(ctx, raw, claims.ExpiresAt.Time)
	if err != nil && !errors.Is(err, repository.ErrAlreadyRevoked) {
		logError(c, err, "revoke token failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logout realizado com sucesso"})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/folio-social/folio-api/internal/middleware"
	"github.com/folio-social/folio-api/internal/model"
)

type RecommendationStore interface {
	ForUser(ctx context.Context, userID uint64, limit int) ([]model.Recommendation, error)
}

type RecommendationHandler struct {
	Recs RecommendationStore
}

func NewRecommendationHandler(r RecommendationStore) *RecommendationHandler {
	return &RecommendationHandler{Recs: r}
}

type recommendationResp struct {
	bookResp
	Curtidas int `json:"curtidas"`
}

// Get returns the caller's feed: books liked by the users they follow,
// ranked by like count among those users, excluding books the caller
// already likes.
func (h *RecommendationHandler) Get(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recs, err := h.Recs.ForUser(ctx, claims.ID, 20)
	if err != nil {
		logError(c, err, "recommendations failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
	}
	out := make([]recommendationResp, 0, len(recs))
	for _, r := range recs {
		out = append(out, recommendationResp{bookResp: toBookResp(r.Book), Curtidas: r.Curtidas})
	}
	return c.JSON(http.StatusOK, out)
}

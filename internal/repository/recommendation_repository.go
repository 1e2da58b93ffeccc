package repository

import (
	"context"
	"database/sql"

	"github.com/folio-social/folio-api/internal/model"
)

type RecommendationRepo struct{ DB *sql.DB }

func NewRecommendationRepo(db *sql.DB) *RecommendationRepo {
	return &RecommendationRepo{DB: db}
}

// ForUser returns books liked by the users userID follows, ranked by
// how many of them liked each book. Books the requester already likes
// are excluded. Returns at most limit rows.
func (r *RecommendationRepo) ForUser(ctx context.Context, userID uint64, limit int) ([]model.Recommendation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT b.id, b.titulo, b.autor, b.sinopse, b.ano_publicacao, b.created_at, b.updated_at,
		       COUNT(*) AS curtidas
		FROM follows f
		JOIN book_likes bl ON bl.user_id = f.following_id
		JOIN books b ON b.id = bl.book_id
		WHERE f.follower_id = ?
		  AND bl.book_id NOT IN (SELECT book_id FROM book_likes WHERE user_id = ?)
		GROUP BY b.id
		ORDER BY curtidas DESC, b.created_at DESC
		LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Recommendation{}
	for rows.Next() {
		var rec model.Recommendation
		if err := rows.Scan(&rec.ID, &rec.Titulo, &rec.Autor, &rec.Sinopse, &rec.AnoPublicacao,
			&rec.CreatedAt, &rec.UpdatedAt, &rec.Curtidas); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

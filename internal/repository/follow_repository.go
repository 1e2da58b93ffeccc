package repository

import (
	"context"
	"database/sql"

	"github.com/folio-social/folio-api/internal/model"
)

// FollowRepo manages the follows join table. Unlike likes, follow and
// unfollow are explicit operations rather than a toggle: a duplicate
// follow is a conflict and an unfollow of a non-existing relation is
// NotFound. The (follower_id, following_id) pair is unique.
type FollowRepo struct{ DB *sql.DB }

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{DB: db} }

// Follow creates the relation. Self-follow is rejected before any
// store access.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followingID uint64) error {
	if followerID == followingID {
		return ErrSelfFollow
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO follows (follower_id, following_id) VALUES (?,?)",
		followerID, followingID)
	if isDuplicate(err) {
		return ErrConflict
	}
	if isFKViolation(err) {
		return ErrNotFound
	}
	return err
}

// Unfollow removes the relation; absent relation is NotFound.
func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followingID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id=? AND following_id=?",
		followerID, followingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Followers lists the users following userID.
func (r *FollowRepo) Followers(ctx context.Context, userID uint64) ([]model.Profile, error) {
	return r.listRelated(ctx, `
		SELECT u.id, u.nome,
		       (SELECT COUNT(*) FROM follows WHERE following_id = u.id),
		       (SELECT COUNT(*) FROM follows WHERE follower_id = u.id)
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = ? ORDER BY u.nome`, userID)
}

// Following lists the users userID follows.
func (r *FollowRepo) Following(ctx context.Context, userID uint64) ([]model.Profile, error) {
	return r.listRelated(ctx, `
		SELECT u.id, u.nome,
		       (SELECT COUNT(*) FROM follows WHERE following_id = u.id),
		       (SELECT COUNT(*) FROM follows WHERE follower_id = u.id)
		FROM follows f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = ? ORDER BY u.nome`, userID)
}

func (r *FollowRepo) listRelated(ctx context.Context, q string, userID uint64) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Nome, &p.Seguidores, &p.Seguindo); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

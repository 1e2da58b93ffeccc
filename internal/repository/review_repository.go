package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/folio-social/folio-api/internal/model"
)

// ReviewRepo covers comments and ratings. The two tables are
// correlated only by a shared (book_id, user_id) pair; there is no
// foreign key between them, so a comment may exist with no rating and
// is then listed with a null nota. Creating a review writes both
// inside one transaction: either the comment and the rating upsert
// both commit, or neither does.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// CreateReview inserts a comment and upserts the author's rating for
// the same book atomically. The rating is keyed uniquely by
// (book_id, user_id): a resubmission overwrites nota in place, it
// never produces a second row.
func (r *ReviewRepo) CreateReview(ctx context.Context, userID, bookID uint64, texto string, nota int) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO comments (book_id, user_id, texto) VALUES (?,?,?)",
		bookID, userID, texto)
	if err != nil {
		if isFKViolation(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ratings (book_id, user_id, nota) VALUES (?,?,?) ON DUPLICATE KEY UPDATE nota=VALUES(nota)",
		bookID, userID, nota); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateComment edits a comment's texto and, when nota is non-nil,
// upserts the paired rating in the same transaction. The comment must
// belong to userID: a missing comment is NotFound, someone else's
// comment is Forbidden. The distinction is deliberate.
func (r *ReviewRepo) UpdateComment(ctx context.Context, userID, commentID uint64, texto string, nota *int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ownerID, bookID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, book_id FROM comments WHERE id=? LIMIT 1",
		commentID).Scan(&ownerID, &bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE comments SET texto=? WHERE id=?", texto, commentID); err != nil {
		return err
	}
	if nota != nil {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ratings (book_id, user_id, nota) VALUES (?,?,?) ON DUPLICATE KEY UPDATE nota=VALUES(nota)",
			bookID, userID, *nota); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteComment removes a comment owned by userID. The paired rating
// stays untouched: the coupling is loose both ways.
func (r *ReviewRepo) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM comments WHERE id=? LIMIT 1",
		commentID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", commentID)
	return err
}

// CommentsByBook lists a book's comments newest first, each joined
// with the author name, like count and the author's nota when one
// exists for the same (book, user) pair.
func (r *ReviewRepo) CommentsByBook(ctx context.Context, bookID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.book_id, c.user_id, c.texto, u.nome, rt.nota,
		       (SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id),
		       c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		LEFT JOIN ratings rt ON rt.book_id = c.book_id AND rt.user_id = c.user_id
		WHERE c.book_id = ?
		ORDER BY c.created_at DESC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var nota sql.NullInt64
		if err := rows.Scan(&c.ID, &c.BookID, &c.UserID, &c.Texto, &c.AutorNome, &nota,
			&c.Likes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if nota.Valid {
			n := int(nota.Int64)
			c.Nota = &n
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// BookRating returns the average nota and the number of ratings for a
// book. media is nil when the book has no ratings.
func (r *ReviewRepo) BookRating(ctx context.Context, bookID uint64) (*float64, int, error) {
	var media sql.NullFloat64
	var total int
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(nota), COUNT(*) FROM ratings WHERE book_id=?",
		bookID).Scan(&media, &total)
	if err != nil {
		return nil, 0, err
	}
	if !media.Valid {
		return nil, 0, nil
	}
	return &media.Float64, total, nil
}

// UserRating returns the caller's own nota for a book, nil when absent.
func (r *ReviewRepo) UserRating(ctx context.Context, userID, bookID uint64) (*int, error) {
	var nota int
	err := r.DB.QueryRowContext(ctx,
		"SELECT nota FROM ratings WHERE book_id=? AND user_id=? LIMIT 1",
		bookID, userID).Scan(&nota)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &nota, nil
}

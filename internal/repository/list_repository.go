package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/folio-social/folio-api/internal/model"
)

// ListRepo manages reading lists. Two uniqueness rules are enforced by
// the schema and surfaced as ErrConflict: a user cannot own two lists
// with the same name, and a book appears at most once per list.
type ListRepo struct{ DB *sql.DB }

func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{DB: db} }

// Create inserts a reading list for userID.
func (r *ListRepo) Create(ctx context.Context, userID uint64, nome string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reading_lists (user_id, nome) VALUES (?,?)", userID, nome)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ByUser returns the user's lists with their book counts.
func (r *ListRepo) ByUser(ctx context.Context, userID uint64) ([]model.ReadingList, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.nome,
		       (SELECT COUNT(*) FROM reading_list_books WHERE list_id = l.id),
		       l.created_at
		FROM reading_lists l WHERE l.user_id = ? ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReadingList{}
	for rows.Next() {
		var l model.ReadingList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Nome, &l.Livros, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// owner loads the owning user of a list, mapping absence to NotFound.
func (r *ListRepo) owner(ctx context.Context, listID uint64) (uint64, error) {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM reading_lists WHERE id=? LIMIT 1", listID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return ownerID, err
}

// AddBook links a book into a list owned by userID. Duplicate entries
// are a conflict, a missing book is NotFound.
func (r *ListRepo) AddBook(ctx context.Context, userID, listID, bookID uint64) error {
	ownerID, err := r.owner(ctx, listID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO reading_list_books (list_id, book_id) VALUES (?,?)", listID, bookID)
	if isDuplicate(err) {
		return ErrConflict
	}
	if isFKViolation(err) {
		return ErrNotFound
	}
	return err
}

// RemoveBook unlinks a book from a list owned by userID.
func (r *ListRepo) RemoveBook(ctx context.Context, userID, listID, bookID uint64) error {
	ownerID, err := r.owner(ctx, listID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM reading_list_books WHERE list_id=? AND book_id=?", listID, bookID)
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

// Delete removes a list owned by userID; its book links cascade.
func (r *ListRepo) Delete(ctx context.Context, userID, listID uint64) error {
	ownerID, err := r.owner(ctx, listID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM reading_lists WHERE id=?", listID)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/folio-social/folio-api/internal/model"
)

// BookRepo provides CRUD over books and their genre associations. A
// book and its book_genres rows are written inside one transaction so
// no partially-linked book is ever observable.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

// Create inserts the book row and its genre links atomically.
func (r *BookRepo) Create(ctx context.Context, b *model.Book, genreIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO books (titulo, autor, sinopse, ano_publicacao) VALUES (?,?,?,?)",
		b.Titulo, b.Autor, b.Sinopse, b.AnoPublicacao)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	if err := insertGenreLinksTx(ctx, tx, b.ID, genreIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the book fields and replaces its genre links in one
// transaction.
func (r *BookRepo) Update(ctx context.Context, b *model.Book, genreIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE books SET titulo=?, autor=?, sinopse=?, ano_publicacao=? WHERE id=?",
		b.Titulo, b.Autor, b.Sinopse, b.AnoPublicacao, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if scanErr := tx.QueryRowContext(ctx,
			"SELECT 1 FROM books WHERE id=? LIMIT 1", b.ID).Scan(&one); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return ErrNotFound
			}
			return scanErr
		}
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM book_genres WHERE book_id=?", b.ID); err != nil {
		return err
	}
	if err := insertGenreLinksTx(ctx, tx, b.ID, genreIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertGenreLinksTx(ctx context.Context, tx *sql.Tx, bookID uint64, genreIDs []uint64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query := "INSERT INTO book_genres (book_id, genre_id) VALUES "
	args := make([]interface{}, 0, len(genreIDs)*2)
	for i, gid := range genreIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, bookID, gid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if isFKViolation(err) {
		return ErrNotFound
	}
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Delete removes a book; join rows cascade at the schema level.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
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

// List returns all books, most recent first.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, titulo, autor, sinopse, ano_publicacao, created_at, updated_at FROM books ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Titulo, &b.Autor, &b.Sinopse, &b.AnoPublicacao,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetDetail loads one book with genres, like count and rating
// aggregates.
func (r *BookRepo) GetDetail(ctx context.Context, id uint64) (model.BookDetail, error) {
	var d model.BookDetail
	var media sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		SELECT b.id, b.titulo, b.autor, b.sinopse, b.ano_publicacao, b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM book_likes WHERE book_id = b.id),
		       (SELECT AVG(nota) FROM ratings WHERE book_id = b.id),
		       (SELECT COUNT(*) FROM ratings WHERE book_id = b.id)
		FROM books b WHERE b.id = ? LIMIT 1`,
		id).Scan(&d.ID, &d.Titulo, &d.Autor, &d.Sinopse, &d.AnoPublicacao,
		&d.CreatedAt, &d.UpdatedAt, &d.Likes, &media, &d.Avaliacoes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookDetail{}, ErrNotFound
	}
	if err != nil {
		return model.BookDetail{}, err
	}
	if media.Valid {
		d.MediaNota = &media.Float64
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT g.id, g.nome FROM genres g
		JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = ? ORDER BY g.nome`, id)
	if err != nil {
		return model.BookDetail{}, err
	}
	defer rows.Close()
	d.Genres = []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Nome); err != nil {
			return model.BookDetail{}, err
		}
		d.Genres = append(d.Genres, g)
	}
	return d, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
)

// LikeRepo implements the presence-flip over the book_likes and
// comment_likes join tables. Both tables carry a composite UNIQUE key
// on the (subject, actor) pair; that constraint is the sole
// correctness backstop under concurrency. There is no application
// locking: a toggle that loses a double-insert race surfaces the
// duplicate-key error as ErrConflict, which handlers map to a
// retry-able 409 instead of a 500.
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// ToggleBookLike flips the (bookID, userID) like. It reports the
// resulting state: true when the like now exists, false when it was
// removed.
func (r *LikeRepo) ToggleBookLike(ctx context.Context, userID, bookID uint64) (bool, error) {
	return r.toggle(ctx,
		"DELETE FROM book_likes WHERE book_id=? AND user_id=?",
		"INSERT INTO book_likes (book_id, user_id) VALUES (?,?)",
		bookID, userID)
}

// ToggleCommentLike flips the (commentID, userID) like.
func (r *LikeRepo) ToggleCommentLike(ctx context.Context, userID, commentID uint64) (bool, error) {
	return r.toggle(ctx,
		"DELETE FROM comment_likes WHERE comment_id=? AND user_id=?",
		"INSERT INTO comment_likes (comment_id, user_id) VALUES (?,?)",
		commentID, userID)
}

// toggle runs the flip: delete first, and only when nothing was
// deleted, insert. An even number of calls for the same pair always
// returns to zero rows; an odd number leaves exactly one.
func (r *LikeRepo) toggle(ctx context.Context, delQ, insQ string, subjectID, actorID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, delQ, subjectID, actorID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil // was active, now removed
	}
	if _, err := r.DB.ExecContext(ctx, insQ, subjectID, actorID); err != nil {
		if isDuplicate(err) {
			// Lost a race against a concurrent toggle for the same pair.
			return false, ErrConflict
		}
		if isFKViolation(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return true, nil
}

// CountBookLikes returns the like total for a book.
func (r *LikeRepo) CountBookLikes(ctx context.Context, bookID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM book_likes WHERE book_id=?", bookID).Scan(&n)
	return n, err
}

// UserLikedBook reports whether userID currently likes bookID.
func (r *LikeRepo) UserLikedBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM book_likes WHERE book_id=? AND user_id=? LIMIT 1",
		bookID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

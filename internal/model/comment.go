package model

import "time"

// Comment is a row in the `comments` table. A comment is only loosely
// paired with a rating: both are keyed by (book_id, user_id) but no
// foreign key ties them together, so Nota is nil when the author never
// rated the book. That looseness is inherited from the data model and
// must not be tightened here.
//
// Fields:
//
//	ID        – primary key identifier.
//	BookID    – book the comment belongs to.
//	UserID    – author of the comment.
//	Texto     – comment body.
//	Nota      – the author's rating of the same book, when one exists.
//	AutorNome – author display name (joined from users for listings).
//	Likes     – number of comment likes (joined for listings).
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Comment struct {
	ID        uint64    // comments.id
	BookID    uint64    // comments.book_id
	UserID    uint64    // comments.user_id
	Texto     string    // comments.texto
	Nota      *int      // ratings.nota for the same (book,user), nullable
	AutorNome string    // users.nome
	Likes     int       // count of comment_likes rows
	CreatedAt time.Time // comments.created_at
	UpdatedAt time.Time // comments.updated_at
}

// Rating is a row in the `ratings` table, keyed uniquely by
// (book_id, user_id). Resubmission overwrites Nota in place; there is
// never more than one row per pair.
type Rating struct {
	ID        uint64    // ratings.id
	BookID    uint64    // ratings.book_id
	UserID    uint64    // ratings.user_id
	Nota      int       // ratings.nota, constrained to 1..5
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

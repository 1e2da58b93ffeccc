package model

import "time"

// ReadingList is a row in the `reading_lists` table. List names are
// unique per owner, enforced by a composite unique key on
// (user_id, nome).
type ReadingList struct {
	ID        uint64    // reading_lists.id
	UserID    uint64    // reading_lists.user_id
	Nome      string    // reading_lists.nome
	Livros    int       // count of reading_list_books rows (listings only)
	CreatedAt time.Time // reading_lists.created_at
}

// Recommendation is one entry of the personalized recommendation feed:
// a book plus how many of the requester's followed users liked it.
type Recommendation struct {
	Book
	Curtidas int // likes among followed users
}

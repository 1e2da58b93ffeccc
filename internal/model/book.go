package model

import "time"

// Book represents a row in the `books` table. Genre associations live
// in the `book_genres` join table and are loaded separately.
//
// Fields:
//
//	ID        – primary key identifier.
//	Titulo    – book title.
//	Autor     – author name.
//	Sinopse   – free-text synopsis (may be empty).
//	AnoPublicacao – publication year, zero when unknown.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Book struct {
	ID            uint64    // books.id
	Titulo        string    // books.titulo
	Autor         string    // books.autor
	Sinopse       string    // books.sinopse
	AnoPublicacao int       // books.ano_publicacao
	CreatedAt     time.Time // books.created_at
	UpdatedAt     time.Time // books.updated_at
}

// Genre is a row in the `genres` table.
type Genre struct {
	ID   uint64 `json:"id"`   // genres.id
	Nome string `json:"nome"` // genres.nome (unique)
}

// BookDetail bundles a book with its genres and social aggregates for
// the detail endpoint. MediaNota is nil when the book has no ratings;
// the JSON then carries null rather than 0.
type BookDetail struct {
	Book
	Genres     []Genre
	Likes      int
	MediaNota  *float64
	Avaliacoes int
}

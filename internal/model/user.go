package model

import "time"

// User represents an application user record as stored in the `users`
// table. JSON shapes returned to clients are defined by the handlers;
// this struct is the repository-layer view of a row.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Nome         – display name.
//	Email        – unique email address, stored lowercase.
//	PasswordHash – bcrypt hashed password.
//	Role         – role flag (USER or ADMIN).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Nome         string    // users.nome
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile is the public view of a user: identity plus follow counts.
// No email or credential material is exposed.
type Profile struct {
	ID         uint64 `json:"id"`
	Nome       string `json:"nome"`
	Seguidores int    `json:"seguidores"`
	Seguindo   int    `json:"seguindo"`
}

// BlacklistedToken models an entry in the `blacklisted_tokens` table.
// The raw token string is stored verbatim; ExpiresAt mirrors the
// token's own natural expiry so entries can be purged once the
// verifier would reject the token anyway.
type BlacklistedToken struct {
	ID        uint64    // blacklisted_tokens.id
	Token     string    // blacklisted_tokens.token (unique)
	ExpiresAt time.Time // blacklisted_tokens.expires_at
	CreatedAt time.Time // blacklisted_tokens.created_at
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo is the revocation ledger: a durable set of tokens that must
// be rejected even though they are still cryptographically valid. Rows
// are keyed by the raw token string (unique) and carry the token's own
// expiry so that PurgeExpired can drop entries the verifier would
// reject on expiry grounds anyway.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke inserts a token into the blacklist. Revoking an
// already-revoked token returns ErrAlreadyRevoked; the end-state is
// identical either way, so callers treat it as success, never as a
// conflict.
func (r *TokenRepo) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO blacklisted_tokens (token, expires_at) VALUES (?,?)",
		token, expiresAt.UTC())
	if isDuplicate(err) {
		return ErrAlreadyRevoked
	}
	return err
}

// IsRevoked does a point lookup by exact token string.
func (r *TokenRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM blacklisted_tokens WHERE token=? LIMIT 1",
		token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired deletes entries whose natural expiry has passed and
// returns how many rows were removed. A revoked token past its expiry
// is redundant: the verifier rejects it regardless of the ledger.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM blacklisted_tokens WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

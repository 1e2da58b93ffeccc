package auth // package auth mints and validates session tokens and password hashes

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/folio-social/folio-api/internal/model"
)

// ErrInvalidToken is returned by Verify for any token that fails
// signature, format or expiry checks. Callers do not need to
// distinguish the sub-cases; all map to the same client response.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded payload of a session token. The identity
// fields mirror what the frontend expects to read out of the token:
// numeric id, email, display name and role flag, plus the registered
// iat/exp claims.
type Claims struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is a signed token together with its expiry. The expiry is
// returned alongside the string so logout can record the token's
// natural lifetime in the revocation ledger without re-parsing it.
type Session struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Issue builds and signs an HS256 JWT for a user. Expiry is fixed at
// issuance: now + ttlMin minutes. There is no refresh mechanism; after
// expiry the client must authenticate again.
func Issue(secret string, u model.User, ttlMin int) (Session, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		Nome:  u.Nome,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, Exp: exp}, nil
}

// Verify parses and validates a token: signature, structure and expiry.
// It deliberately does NOT consult the revocation ledger — that check
// belongs to the middleware, because the two failures map to different
// client-visible statuses.
func Verify(secret, raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

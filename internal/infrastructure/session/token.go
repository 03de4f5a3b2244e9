// Package session implements the cookie-token side of session handling.
// The cookie value is an HS256-signed token wrapping nothing but the
// random server-side session id; all session state lives in the store.
// The signature only lets us reject forged cookies before a store
// round-trip; no claim in the token is trusted as state.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// TokenCodec signs and verifies session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the token lifetime, which doubles as the session TTL.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Sign wraps a session id into a signed token.
func (c *TokenCodec) Sign(sid string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(c.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Parse verifies a token and returns the session id it carries.
// Any malformed, tampered or expired token maps to ErrUnauthenticated.
func (c *TokenCodec) Parse(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrUnauthenticated
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrUnauthenticated
	}
	return sid, nil
}

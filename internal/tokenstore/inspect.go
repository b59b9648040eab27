package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can learn from a token without verifying it.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token declared an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the token's exp claim is at or before now.
// Tokens without an exp claim never expire from the client's point of view.
func (c Claims) ExpiredAt(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}

// Inspect reads the claims of a JWT without checking its signature. The server
// remains the authority; this only lets the client skip requests that cannot succeed.
// ok is false when token is not a JWT (opaque tokens are allowed).
func Inspect(token string) (claims Claims, ok bool) {
	parser := jwt.NewParser()
	var rc jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}

	claims.Subject = rc.Subject
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, true
}

// Expired reports whether a JWT has a past exp claim. Opaque tokens are never expired.
func Expired(token string, now time.Time) bool {
	claims, ok := Inspect(token)
	return ok && claims.ExpiredAt(now)
}

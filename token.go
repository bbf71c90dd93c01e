package dukani

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway treats tokens about to expire as expired, so restore doesn't
// present a token the backend will reject milliseconds later.
const expiryLeeway = 30 * time.Second

// accessTokenExpired inspects the token's embedded expiry without verifying
// the signature; verification is the backend's job. Opaque or malformed
// tokens report false and the backend gets the final word.
func accessTokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().Add(expiryLeeway).After(claims.ExpiresAt.Time)
}

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens, and JWTs without exp, are never considered expired here;
// the backend decides when they are resolved.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

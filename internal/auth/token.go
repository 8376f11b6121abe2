// Package auth reads the claims of access tokens issued by the HireHub API.
// The console never holds the signing key, so tokens are inspected without
// verification; the results are informational only.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned for tokens that are not JWTs
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims represents the access token claims
type Claims struct {
	UserID  any    `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Inspect parses tokenString without checking its signature
func Inspect(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrOpaqueToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	return claims, nil
}

// ExpiresAt returns the exp claim in UTC, or nil when the token is opaque or
// carries no expiry
func ExpiresAt(tokenString string) *time.Time {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	expiresAt := claims.ExpiresAt.Time.UTC()
	return &expiresAt
}

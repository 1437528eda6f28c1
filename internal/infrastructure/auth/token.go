// Package auth reads the claims of access tokens issued by the user service.
// Signature verification stays with the backends that own the signing key;
// the storefront only needs the subject and the expiry.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Common errors
var (
	ErrMalformedToken = errors.New("malformed token")
)

// TokenClaims are the claims the storefront uses
type TokenClaims struct {
	Subject   string
	UserID    int64 // zero when the subject is not numeric
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes the token's registered claims without verifying the signature
func Inspect(token string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := &TokenClaims{Subject: claims.Subject}
	if id, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
		out.UserID = id
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// ExpiresAt returns the token's exp claim, false if absent or unreadable
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

// UserID returns the numeric subject of the token, 0 if unknown
func UserID(token string) int64 {
	claims, err := Inspect(token)
	if err != nil {
		return 0
	}
	return claims.UserID
}

package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when an access token cannot be read.
var ErrMalformedToken = errors.New("malformed access token")

// TokenExpiry reads the exp claim of an access token.
// The signature is not verified here: the backend verifies every call, and this
// value only bounds how long the server-side session lives.
// POST: Returns the zero time when the token carries no exp claim
func TokenExpiry(access string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

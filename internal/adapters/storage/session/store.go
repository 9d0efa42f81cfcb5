// Package session persists web sessions keyed by an opaque cookie token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	domain "gymfront/internal/domain/session"
)

// Store keeps sessions between requests.
// Implementations treat an expired session as absent and return domain.ErrNotFound.
type Store interface {
	Create(ctx context.Context, s domain.Session) (string, error)
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

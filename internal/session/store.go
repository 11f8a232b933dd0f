package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// TTL is the absolute lifetime of a session. Sessions are not renewed on
// access; the expiry set at creation is final.
const TTL = 24 * time.Hour

// ErrNoSession is returned by Resolve when the token is unknown or expired.
var ErrNoSession = errors.New("no such session")

// Store maps opaque session tokens to user IDs. Tokens carry no embedded
// identity; they resolve only through the store.
type Store interface {
	Create(ctx context.Context, token, userID string) error
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// NewToken generates an opaque session token with 192 bits of entropy,
// URL-safe encoded.
func NewToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Package cache stores admin sessions behind opaque cookie tokens.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bilgisen/sevennews/internal/utils"
)

// ErrSessionNotFound is returned by Lookup for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session is what a signed-in admin carries between requests.
type Session struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions issues, resolves and revokes session tokens. Only the hash of a
// token is ever used as a storage key.
type Sessions interface {
	Create(ctx context.Context, s Session, ttl time.Duration) (token string, err error)
	Lookup(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
	// Clear revokes every session, signing all admins out.
	Clear(ctx context.Context) error
	Close() error
}

func newToken() string {
	return uuid.NewString()
}

func tokenKey(token string) string {
	return utils.Hash(token)
}

// Package session owns server-side authenticated session state. A Store maps
// opaque tokens to sessions; tokens are minted on login and are never reused
// after destruction.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/marloe/showbill/internal/domain"
)

// ErrInvalidToken is returned when a token is unknown, destroyed or expired.
var ErrInvalidToken = errors.New("session: invalid token")

// Session binds an opaque token to an authenticated user.
type Session struct {
	Token     string
	User      domain.User
	CreatedAt time.Time
}

// Store is the session lifecycle contract. Implementations must allow
// concurrent access to unrelated tokens without interference.
type Store interface {
	// Create mints a fresh token bound to the user.
	Create(ctx context.Context, user domain.User) (string, error)
	// Get returns the live session for token, or ErrInvalidToken.
	Get(ctx context.Context, token string) (*Session, error)
	// Destroy invalidates token. Destroying an absent token is not an error.
	Destroy(ctx context.Context, token string) error
	// Close releases background resources.
	Close()
}

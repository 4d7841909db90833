package ports

import (
	"context"

	"github.com/kopinusa/storefront/internal/core/domain"
)

// SessionStore persists sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	// Find returns domain.ErrSessionNotFound when id is unknown or expired.
	Find(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// CartStore persists the cart of each session.
type CartStore interface {
	// Load returns an empty cart when the session has none yet.
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// SubmitGuard is a best-effort "submitting" flag shared across instances.
type SubmitGuard interface {
	// Acquire returns false when the flag for key is already held. The
	// token identifies this holder to Release.
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	// Release drops the flag only while token still holds it.
	Release(ctx context.Context, key, token string) error
}

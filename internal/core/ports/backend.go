package ports

import "context"

// Backend is the REST collaborator that owns users, menu, orders and payments.
// Non-2xx answers are returned as *domain.RemoteError.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error

	// WithToken returns a Backend that authenticates every call with token.
	WithToken(token string) Backend
}

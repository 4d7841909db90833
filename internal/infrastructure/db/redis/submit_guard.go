package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kopinusa/storefront/internal/core/ports"
)

const defaultSubmitTTL = 30 * time.Second

// releaseScript deletes the flag only while it still carries the caller's
// token, so a holder whose TTL lapsed cannot drop a newer holder's flag.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmitGuard is a best-effort "submitting" flag shared across instances.
// The flag expires on its own if the holder dies before releasing it.
// Key format: submit:<key>
type SubmitGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.SubmitGuard = (*SubmitGuard)(nil)

func NewSubmitGuard(client redis.UniversalClient, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = defaultSubmitTTL
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

// Acquire sets the flag unless it is already held.
func (g *SubmitGuard) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, submitKey(key), token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("submit guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (g *SubmitGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{submitKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("submit guard: release: %w", err)
	}
	return nil
}

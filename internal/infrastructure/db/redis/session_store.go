package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

// SessionStore keeps sessions as JSON values that expire with the session.
// Key format: session:<id>
type SessionStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	ttl := sessionTTL(sess, s.now())
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionStore) Find(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// sessionTTL is the time left until the session expires. Sessions without an
// expiry are kept for a day.
func sessionTTL(sess *domain.Session, now time.Time) time.Duration {
	if sess.ExpiresAt.IsZero() {
		return 24 * time.Hour
	}
	return sess.ExpiresAt.Sub(now)
}

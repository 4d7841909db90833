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

const defaultCartTTL = 7 * 24 * time.Hour

// CartStore keeps one JSON cart per session. Every save pushes the expiry
// forward. Key format: cart:<session_id>
type CartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.CartStore = (*CartStore)(nil)

func NewCartStore(client redis.UniversalClient, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartStore{client: client, ttl: ttl}
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.Cart{SessionID: sessionID, Lines: []domain.CartLine{}}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.IsEmpty() {
		return s.Clear(ctx, cart.SessionID)
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.SessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

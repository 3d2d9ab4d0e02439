package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// BuyNowStore keeps buy-now sessions as JSON under buy_now:{id}; Redis
// expiry enforces the session TTL.
type BuyNowStore struct {
	client *redis.Client
}

func NewBuyNowStore(client *redis.Client) *BuyNowStore {
	return &BuyNowStore{client: client}
}

func (s *BuyNowStore) Save(ctx context.Context, session *models.BuyNowSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal buy-now session %s: %w", session.BuyNowSessionID, err)
	}
	return s.client.Set(ctx, "buy_now:"+session.BuyNowSessionID, data, ttl).Err()
}

func (s *BuyNowStore) Get(ctx context.Context, id string) (*models.BuyNowSession, error) {
	data, err := s.client.Get(ctx, "buy_now:"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrBuyNowNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.BuyNowSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal buy-now session %s: %w", id, err)
	}
	return &session, nil
}

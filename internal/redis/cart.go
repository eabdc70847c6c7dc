package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
	"pethotel/internal/repository/record"
)

const cartKeyPrefix = "cart:"

// CartStore keeps carts in Redis as JSON, refreshing the TTL on every save.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore creates a new CartStore.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

var _ repository.CartStore = (*CartStore)(nil)

// Get retrieves the cart of an owner.
func (s *CartStore) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+ownerKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var rec record.Cart
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.ToCart()
}

// Save stores the cart under its owner key.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	rec, err := record.FromCart(cart)
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKeyPrefix+cart.OwnerKey, data, s.ttl).Err()
}

// Delete removes the cart of an owner.
func (s *CartStore) Delete(ctx context.Context, ownerKey string) error {
	return s.client.Del(ctx, cartKeyPrefix+ownerKey).Err()
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func checkoutLockKey(checkoutID string) string {
	return fmt.Sprintf("lock:checkout:%s", checkoutID)
}

// AcquireCheckoutLock attempts to acquire the finalization lock of a checkout.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireCheckoutLock(ctx context.Context, checkoutID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, checkoutLockKey(checkoutID), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCheckoutLock releases the finalization lock of a checkout.
func (s *LockStore) ReleaseCheckoutLock(ctx context.Context, checkoutID string) error {
	return s.client.Del(ctx, checkoutLockKey(checkoutID)).Err()
}

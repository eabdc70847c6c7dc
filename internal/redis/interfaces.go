package redis

import (
	"context"
	"time"

	"pethotel/internal/domain"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCheckoutLock(ctx context.Context, checkoutID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, checkoutID string) error
}

// ScheduleCacheInterface defines the interface for route schedule caching.
type ScheduleCacheInterface interface {
	GetRouteSchedules(ctx context.Context, serviceID, from, to string) ([]*domain.SharedTaxiSchedule, bool, error)
	SetRouteSchedules(ctx context.Context, serviceID, from, to string, schedules []*domain.SharedTaxiSchedule) error
	InvalidateRoute(ctx context.Context, serviceID, from, to string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface     = (*LockStore)(nil)
	_ ScheduleCacheInterface = (*CacheStore)(nil)
)

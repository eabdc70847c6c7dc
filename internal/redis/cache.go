package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pethotel/internal/domain"
)

// RouteCacheTTL bounds how stale a cached route listing can get. Every seat
// reservation invalidates the route as well.
const RouteCacheTTL = 15 * time.Second

const routeCachePrefix = "cache:schedules:"

// CacheStore caches bookable shared taxi runs per route.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// CachedSchedule represents a cached shared taxi run.
type CachedSchedule struct {
	ID            string    `json:"id"`
	TaxiServiceID string    `json:"taxi_service_id"`
	FromCity      string    `json:"from_city"`
	ToCity        string    `json:"to_city"`
	TravelDate    time.Time `json:"travel_date"`
	DepartureTime string    `json:"departure_time"`
	PricePerSeat  int64     `json:"price_per_seat"`
	MaxCapacity   int       `json:"max_capacity"`
	BookedCount   int       `json:"booked_count"`
	Status        string    `json:"status"`
}

// RouteKey builds a direction-agnostic cache key for a service route.
func RouteKey(serviceID, from, to string) string {
	a, b := domain.NormalizeCity(from), domain.NormalizeCity(to)
	if b < a {
		a, b = b, a
	}
	return routeCachePrefix + serviceID + ":" + a + ":" + b
}

// GetRouteSchedules retrieves the cached runs of a route.
// Returns ok=false on a cache miss.
func (s *CacheStore) GetRouteSchedules(ctx context.Context, serviceID, from, to string) ([]*domain.SharedTaxiSchedule, bool, error) {
	data, err := s.client.Get(ctx, RouteKey(serviceID, from, to)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached []CachedSchedule
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}

	schedules := make([]*domain.SharedTaxiSchedule, 0, len(cached))
	for _, c := range cached {
		schedules = append(schedules, &domain.SharedTaxiSchedule{
			ID:            c.ID,
			TaxiServiceID: c.TaxiServiceID,
			FromCity:      c.FromCity,
			ToCity:        c.ToCity,
			TravelDate:    c.TravelDate,
			DepartureTime: c.DepartureTime,
			PricePerSeat:  domain.Money(c.PricePerSeat),
			MaxCapacity:   c.MaxCapacity,
			BookedCount:   c.BookedCount,
			Status:        domain.ScheduleStatus(c.Status),
		})
	}

	return schedules, true, nil
}

// SetRouteSchedules stores the runs of a route.
func (s *CacheStore) SetRouteSchedules(ctx context.Context, serviceID, from, to string, schedules []*domain.SharedTaxiSchedule) error {
	cached := make([]CachedSchedule, 0, len(schedules))
	for _, sc := range schedules {
		cached = append(cached, CachedSchedule{
			ID:            sc.ID,
			TaxiServiceID: sc.TaxiServiceID,
			FromCity:      sc.FromCity,
			ToCity:        sc.ToCity,
			TravelDate:    sc.TravelDate,
			DepartureTime: sc.DepartureTime,
			PricePerSeat:  int64(sc.PricePerSeat),
			MaxCapacity:   sc.MaxCapacity,
			BookedCount:   sc.BookedCount,
			Status:        string(sc.Status),
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, RouteKey(serviceID, from, to), data, RouteCacheTTL).Err()
}

// InvalidateRoute removes the cached runs of a route.
func (s *CacheStore) InvalidateRoute(ctx context.Context, serviceID, from, to string) error {
	return s.client.Del(ctx, RouteKey(serviceID, from, to)).Err()
}

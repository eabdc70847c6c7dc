package app

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	internalRedis "pethotel/internal/redis"
	"pethotel/internal/repository"
	"pethotel/internal/repository/memory"
	"pethotel/internal/repository/postgres"
)

// CatalogStore reads and seeds reference data.
type CatalogStore interface {
	repository.CatalogRepository
	repository.CatalogWriter
}

// Stores groups the persistence ports of the booking core.
type Stores struct {
	Catalog   CatalogStore
	Schedules repository.ScheduleRepository
	Orders    repository.OrderRepository
	Payments  repository.PaymentAttemptRepository
	Carts     repository.CartStore
}

// NewPostgresStores backs every durable store with PostgreSQL.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Catalog:   postgres.NewCatalogRepository(db),
		Schedules: postgres.NewScheduleRepository(db),
		Orders:    postgres.NewOrderRepository(db),
		Payments:  postgres.NewPaymentAttemptRepository(db),
		Carts:     memory.NewCartStore(),
	}
}

// NewMemoryStores keeps everything in process memory.
func NewMemoryStores() Stores {
	return Stores{
		Catalog:   memory.NewCatalogStore(),
		Schedules: memory.NewScheduleStore(),
		Orders:    memory.NewOrderStore(),
		Payments:  memory.NewPaymentAttemptStore(),
		Carts:     memory.NewCartStore(),
	}
}

// WithRedisCarts moves carts to Redis so they survive restarts and are
// shared between server instances.
func (s Stores) WithRedisCarts(client *redis.Client, ttl time.Duration) Stores {
	s.Carts = internalRedis.NewCartStore(client, ttl)
	return s
}

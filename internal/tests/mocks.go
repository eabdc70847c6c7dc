package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/notify"
	"pethotel/internal/repository/memory"
	"pethotel/internal/service"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository wraps the in-memory order store with call counters
// and error injection.
type MockOrderRepository struct {
	*memory.OrderStore

	// Counters for verification
	CreateWithBookingsCallCount int32
	CreateCallCount             int32

	// Error injection
	CreateWithBookingsError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{OrderStore: memory.NewOrderStore()}
}

func (m *MockOrderRepository) CreateWithBookings(ctx context.Context, order *domain.Order, bookings []*domain.Booking) error {
	atomic.AddInt32(&m.CreateWithBookingsCallCount, 1)
	if m.CreateWithBookingsError != nil {
		return m.CreateWithBookingsError
	}
	return m.OrderStore.CreateWithBookings(ctx, order, bookings)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	return m.OrderStore.Create(ctx, order)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockPaymentGateway answers like the simulated provider unless told to fail.
type MockPaymentGateway struct {
	mu       sync.Mutex
	delegate *service.SimulatedGateway

	// Control behavior
	FailError error

	// Counters
	ChargeCallCount int32
	charged         []service.ChargeRequest
}

// NewMockPaymentGateway creates a new mock gateway.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{delegate: service.NewSimulatedGateway(0)}
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req service.ChargeRequest) (service.ChargeResult, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	m.mu.Lock()
	m.charged = append(m.charged, req)
	failErr := m.FailError
	m.mu.Unlock()

	if failErr != nil {
		return service.ChargeResult{}, failErr
	}
	return m.delegate.Charge(ctx, req)
}

// SetFailure makes every following charge fail with err. nil restores it.
func (m *MockPaymentGateway) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailError = err
}

// Charged returns the requests seen so far.
func (m *MockPaymentGateway) Charged() []service.ChargeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.ChargeRequest(nil), m.charged...)
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// PublishedEvent is one message handed to the publisher.
type PublishedEvent struct {
	Topic   string
	Key     string
	Payload interface{}
}

// MockEventPublisher records published notifications.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	// Counters
	PublishCallCount int32

	// Error injection
	PublishError error
}

// NewMockEventPublisher creates a new mock publisher.
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	atomic.AddInt32(&m.PublishCallCount, 1)
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Key: key, Payload: payload})
	return nil
}

// Events returns the recorded messages.
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.events...)
}

// CountOfType counts recorded notifications of one type.
func (m *MockEventPublisher) CountOfType(typ notify.Type) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if ev, ok := e.Payload.(notify.Event); ok && ev.Type == typ {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireCheckoutLock(ctx context.Context, checkoutID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:checkout:" + checkoutID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseCheckoutLock(ctx context.Context, checkoutID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:checkout:"+checkoutID)
	return nil
}

// IsLocked checks if a checkout is locked (for test assertions).
func (m *MockLockStore) IsLocked(checkoutID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:checkout:"+checkoutID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

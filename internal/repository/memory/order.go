package memory

import (
	"context"
	"sort"
	"sync"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// OrderStore is an in-memory repository.OrderRepository.
type OrderStore struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	bookings map[string]domain.Booking
	byOrder  map[string][]string
}

// NewOrderStore creates an empty order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:   make(map[string]domain.Order),
		bookings: make(map[string]domain.Booking),
		byOrder:  make(map[string][]string),
	}
}

var _ repository.OrderRepository = (*OrderStore)(nil)

func (s *OrderStore) CreateWithBookings(ctx context.Context, order *domain.Order, bookings []*domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return repository.ErrAlreadyExists
	}
	for _, b := range bookings {
		if _, exists := s.bookings[b.ID]; exists {
			return repository.ErrAlreadyExists
		}
	}
	s.orders[order.ID] = cloneOrder(order)
	for _, b := range bookings {
		s.bookings[b.ID] = *b
		s.byOrder[order.ID] = append(s.byOrder[order.ID], b.ID)
	}
	return nil
}

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	return s.CreateWithBookings(ctx, order, nil)
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneOrder(&order)
	return &out, nil
}

func (s *OrderStore) GetBookings(ctx context.Context, orderID string) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.orders[orderID]; !ok {
		return nil, repository.ErrNotFound
	}
	ids := s.byOrder[orderID]
	result := make([]*domain.Booking, 0, len(ids))
	for _, id := range ids {
		b := s.bookings[id]
		result = append(result, &b)
	}
	return result, nil
}

func (s *OrderStore) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *OrderStore) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	s.bookings[id] = b
	return nil
}

func (s *OrderStore) ListNeedingRefund(ctx context.Context) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Order
	for _, o := range s.orders {
		if o.Status != domain.OrderStatusFailed || !o.NeedsRefund {
			continue
		}
		out := cloneOrder(&o)
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// CountOrders returns the number of stored orders.
func (s *OrderStore) CountOrders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func cloneOrder(o *domain.Order) domain.Order {
	out := *o
	out.Items = make([]domain.CartItem, len(o.Items))
	copy(out.Items, o.Items)
	return out
}

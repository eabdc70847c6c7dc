package memory

import (
	"context"
	"sync"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// CartStore is an in-memory repository.CartStore.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartStore creates an empty cart store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]domain.Cart)}
}

var _ repository.CartStore = (*CartStore)(nil)

func (s *CartStore) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[ownerKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cart.Items = cart.ItemsInOrder()
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *cart
	stored.Items = cart.ItemsInOrder()
	s.carts[cart.OwnerKey] = stored
	return nil
}

func (s *CartStore) Delete(ctx context.Context, ownerKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerKey)
	return nil
}

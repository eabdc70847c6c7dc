// Package memory provides in-process implementations of the repositories.
// Each store guards its maps with a single mutex; values are copied on the
// way in and out so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// CatalogStore is an in-memory repository.CatalogRepository.
type CatalogStore struct {
	mu       sync.RWMutex
	rooms    map[string]domain.HotelRoom
	addOns   map[string]domain.HotelAddOn
	services map[string]domain.TaxiService
	routes   []domain.CityPricing
}

// NewCatalogStore creates an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		rooms:    make(map[string]domain.HotelRoom),
		addOns:   make(map[string]domain.HotelAddOn),
		services: make(map[string]domain.TaxiService),
	}
}

var (
	_ repository.CatalogRepository = (*CatalogStore)(nil)
	_ repository.CatalogWriter     = (*CatalogStore)(nil)
)

func (s *CatalogStore) GetRoom(ctx context.Context, id string) (*domain.HotelRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &room, nil
}

func (s *CatalogStore) ListRooms(ctx context.Context) ([]*domain.HotelRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.HotelRoom, 0, len(s.rooms))
	for _, r := range s.rooms {
		room := r
		result = append(result, &room)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *CatalogStore) GetAddOn(ctx context.Context, id string) (*domain.HotelAddOn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addOn, ok := s.addOns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &addOn, nil
}

func (s *CatalogStore) ListAddOns(ctx context.Context) ([]*domain.HotelAddOn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.HotelAddOn, 0, len(s.addOns))
	for _, a := range s.addOns {
		addOn := a
		result = append(result, &addOn)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *CatalogStore) GetTaxiService(ctx context.Context, id string) (*domain.TaxiService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (s *CatalogStore) ListTaxiServices(ctx context.Context) ([]*domain.TaxiService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.TaxiService, 0, len(s.services))
	for _, v := range s.services {
		svc := v
		result = append(result, &svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *CatalogStore) ListCityPricing(ctx context.Context) ([]domain.CityPricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CityPricing, len(s.routes))
	copy(result, s.routes)
	return result, nil
}

func (s *CatalogStore) UpsertRoom(ctx context.Context, room *domain.HotelRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = *room
	return nil
}

func (s *CatalogStore) UpsertAddOn(ctx context.Context, addOn *domain.HotelAddOn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOns[addOn.ID] = *addOn
	return nil
}

func (s *CatalogStore) UpsertTaxiService(ctx context.Context, svc *domain.TaxiService) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = *svc
	return nil
}

func (s *CatalogStore) UpsertCityPricing(ctx context.Context, pricing domain.CityPricing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.routes {
		if existing.Matches(pricing.FromCity, pricing.ToCity) {
			s.routes[i] = pricing
			return nil
		}
	}
	s.routes = append(s.routes, pricing)
	return nil
}

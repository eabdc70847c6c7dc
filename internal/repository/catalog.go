package repository

import (
	"context"

	"pethotel/internal/domain"
)

// CatalogRepository provides read access to immutable reference data.
type CatalogRepository interface {
	// GetRoom retrieves a hotel room by ID.
	GetRoom(ctx context.Context, id string) (*domain.HotelRoom, error)

	// ListRooms retrieves all hotel rooms.
	ListRooms(ctx context.Context) ([]*domain.HotelRoom, error)

	// GetAddOn retrieves a hotel add-on service by ID.
	GetAddOn(ctx context.Context, id string) (*domain.HotelAddOn, error)

	// ListAddOns retrieves all hotel add-on services.
	ListAddOns(ctx context.Context) ([]*domain.HotelAddOn, error)

	// GetTaxiService retrieves a taxi service by ID.
	GetTaxiService(ctx context.Context, id string) (*domain.TaxiService, error)

	// ListTaxiServices retrieves all taxi services.
	ListTaxiServices(ctx context.Context) ([]*domain.TaxiService, error)

	// ListCityPricing retrieves all known inter-city routes.
	ListCityPricing(ctx context.Context) ([]domain.CityPricing, error)
}

// CatalogWriter seeds reference data.
type CatalogWriter interface {
	UpsertRoom(ctx context.Context, room *domain.HotelRoom) error
	UpsertAddOn(ctx context.Context, addOn *domain.HotelAddOn) error
	UpsertTaxiService(ctx context.Context, svc *domain.TaxiService) error
	UpsertCityPricing(ctx context.Context, pricing domain.CityPricing) error
}

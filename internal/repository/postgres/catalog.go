package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// CatalogRepository is a PostgreSQL implementation of repository.CatalogRepository.
type CatalogRepository struct {
	q Querier
}

// NewCatalogRepository creates a new PostgreSQL catalog repository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{q: db}
}

var (
	_ repository.CatalogRepository = (*CatalogRepository)(nil)
	_ repository.CatalogWriter     = (*CatalogRepository)(nil)
)

// GetRoom retrieves a hotel room by ID.
func (r *CatalogRepository) GetRoom(ctx context.Context, id string) (*domain.HotelRoom, error) {
	query := `SELECT id, name, type, capacity, price_per_night, amenities FROM hotel_rooms WHERE id = $1`

	room, err := scanRoom(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return room, nil
}

// ListRooms retrieves all hotel rooms.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]*domain.HotelRoom, error) {
	query := `SELECT id, name, type, capacity, price_per_night, amenities FROM hotel_rooms ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.HotelRoom
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// GetAddOn retrieves a hotel add-on service by ID.
func (r *CatalogRepository) GetAddOn(ctx context.Context, id string) (*domain.HotelAddOn, error) {
	query := `SELECT id, name, price FROM hotel_add_ons WHERE id = $1`

	var (
		addOn domain.HotelAddOn
		price int64
	)
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&addOn.ID, &addOn.Name, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	addOn.Price = domain.Money(price)

	return &addOn, nil
}

// ListAddOns retrieves all hotel add-on services.
func (r *CatalogRepository) ListAddOns(ctx context.Context) ([]*domain.HotelAddOn, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, price FROM hotel_add_ons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addOns []*domain.HotelAddOn
	for rows.Next() {
		var (
			addOn domain.HotelAddOn
			price int64
		)
		if err := rows.Scan(&addOn.ID, &addOn.Name, &price); err != nil {
			return nil, err
		}
		addOn.Price = domain.Money(price)
		addOns = append(addOns, &addOn)
	}

	return addOns, rows.Err()
}

// GetTaxiService retrieves a taxi service by ID.
func (r *CatalogRepository) GetTaxiService(ctx context.Context, id string) (*domain.TaxiService, error) {
	query := `
		SELECT id, name, taxi_type, base_price, price_per_km, max_pet_weight, capacity, features
		FROM taxi_services WHERE id = $1
	`

	svc, err := scanTaxiService(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return svc, nil
}

// ListTaxiServices retrieves all taxi services.
func (r *CatalogRepository) ListTaxiServices(ctx context.Context) ([]*domain.TaxiService, error) {
	query := `
		SELECT id, name, taxi_type, base_price, price_per_km, max_pet_weight, capacity, features
		FROM taxi_services ORDER BY id
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*domain.TaxiService
	for rows.Next() {
		svc, err := scanTaxiService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	return services, rows.Err()
}

// ListCityPricing retrieves all known inter-city routes.
func (r *CatalogRepository) ListCityPricing(ctx context.Context) ([]domain.CityPricing, error) {
	query := `SELECT from_city, to_city, distance_km, additional_fee, discount_pct FROM city_pricing ORDER BY city_a, city_b`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.CityPricing
	for rows.Next() {
		var (
			p   domain.CityPricing
			fee int64
		)
		if err := rows.Scan(&p.FromCity, &p.ToCity, &p.DistanceKm, &fee, &p.DiscountPct); err != nil {
			return nil, err
		}
		p.AdditionalFee = domain.Money(fee)
		routes = append(routes, p)
	}

	return routes, rows.Err()
}

// UpsertRoom inserts or replaces a hotel room.
func (r *CatalogRepository) UpsertRoom(ctx context.Context, room *domain.HotelRoom) error {
	query := `
		INSERT INTO hotel_rooms (id, name, type, capacity, price_per_night, amenities)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, capacity = EXCLUDED.capacity,
			price_per_night = EXCLUDED.price_per_night, amenities = EXCLUDED.amenities
	`

	_, err := r.q.ExecContext(ctx, query,
		room.ID, room.Name, room.Type, room.Capacity, int64(room.PricePerNight), pq.Array(room.Amenities))
	return err
}

// UpsertAddOn inserts or replaces a hotel add-on service.
func (r *CatalogRepository) UpsertAddOn(ctx context.Context, addOn *domain.HotelAddOn) error {
	query := `
		INSERT INTO hotel_add_ons (id, name, price) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price
	`

	_, err := r.q.ExecContext(ctx, query, addOn.ID, addOn.Name, int64(addOn.Price))
	return err
}

// UpsertTaxiService inserts or replaces a taxi service.
func (r *CatalogRepository) UpsertTaxiService(ctx context.Context, svc *domain.TaxiService) error {
	query := `
		INSERT INTO taxi_services (id, name, taxi_type, base_price, price_per_km, max_pet_weight, capacity, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, taxi_type = EXCLUDED.taxi_type, base_price = EXCLUDED.base_price,
			price_per_km = EXCLUDED.price_per_km, max_pet_weight = EXCLUDED.max_pet_weight,
			capacity = EXCLUDED.capacity, features = EXCLUDED.features
	`

	_, err := r.q.ExecContext(ctx, query,
		svc.ID, svc.Name, svc.TaxiType, int64(svc.BasePrice), int64(svc.PricePerKm),
		svc.MaxPetWeight, svc.Capacity, pq.Array(svc.Features))
	return err
}

// UpsertCityPricing inserts or replaces a route. The key is the sorted,
// normalized city pair so both directions share one row.
func (r *CatalogRepository) UpsertCityPricing(ctx context.Context, p domain.CityPricing) error {
	a, b := domain.NormalizeCity(p.FromCity), domain.NormalizeCity(p.ToCity)
	if b < a {
		a, b = b, a
	}

	query := `
		INSERT INTO city_pricing (city_a, city_b, from_city, to_city, distance_km, additional_fee, discount_pct)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (city_a, city_b) DO UPDATE SET
			from_city = EXCLUDED.from_city, to_city = EXCLUDED.to_city, distance_km = EXCLUDED.distance_km,
			additional_fee = EXCLUDED.additional_fee, discount_pct = EXCLUDED.discount_pct
	`

	_, err := r.q.ExecContext(ctx, query, a, b, p.FromCity, p.ToCity, p.DistanceKm, int64(p.AdditionalFee), p.DiscountPct)
	return err
}

func scanRoom(row rowScanner) (*domain.HotelRoom, error) {
	var (
		room  domain.HotelRoom
		price int64
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Type, &room.Capacity, &price, pq.Array(&room.Amenities)); err != nil {
		return nil, err
	}
	room.PricePerNight = domain.Money(price)
	return &room, nil
}

func scanTaxiService(row rowScanner) (*domain.TaxiService, error) {
	var (
		svc       domain.TaxiService
		basePrice int64
		perKm     int64
	)
	err := row.Scan(&svc.ID, &svc.Name, &svc.TaxiType, &basePrice, &perKm, &svc.MaxPetWeight, &svc.Capacity, pq.Array(&svc.Features))
	if err != nil {
		return nil, err
	}
	svc.BasePrice = domain.Money(basePrice)
	svc.PricePerKm = domain.Money(perKm)
	return &svc, nil
}

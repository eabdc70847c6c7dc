// Package catalog loads the reference data file: rooms, add-ons, taxi
// services, inter-city routes and shared taxi runs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

const dateLayout = "2006-01-02"

// File is the YAML layout of the catalog. Prices are in major units.
type File struct {
	Rooms        []Room        `yaml:"rooms"`
	AddOns       []AddOn       `yaml:"add_ons"`
	TaxiServices []TaxiService `yaml:"taxi_services"`
	Routes       []Route       `yaml:"routes"`
	Schedules    []Schedule    `yaml:"schedules"`
}

type Room struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	Capacity      int      `yaml:"capacity"`
	PricePerNight float64  `yaml:"price_per_night"`
	Amenities     []string `yaml:"amenities"`
}

type AddOn struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

type TaxiService struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	BasePrice    float64  `yaml:"base_price"`
	PricePerKm   float64  `yaml:"price_per_km"`
	MaxPetWeight float64  `yaml:"max_pet_weight_kg"`
	Capacity     int      `yaml:"capacity"`
	Features     []string `yaml:"features"`
}

type Route struct {
	From          string  `yaml:"from"`
	To            string  `yaml:"to"`
	DistanceKm    float64 `yaml:"distance_km"`
	AdditionalFee float64 `yaml:"additional_fee"`
	DiscountPct   float64 `yaml:"discount_pct"`
}

type Schedule struct {
	ID            string  `yaml:"id"`
	ServiceID     string  `yaml:"service_id"`
	From          string  `yaml:"from"`
	To            string  `yaml:"to"`
	TravelDate    string  `yaml:"travel_date"`
	DepartureTime string  `yaml:"departure_time"`
	PricePerSeat  float64 `yaml:"price_per_seat"`
	MaxCapacity   int     `yaml:"max_capacity"`
}

// Load reads and validates a catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks the value ranges the booking core relies on.
func (f *File) Validate() error {
	var errs []error

	for _, r := range f.Rooms {
		switch domain.RoomType(r.Type) {
		case domain.RoomTypeStandard, domain.RoomTypeDeluxe, domain.RoomTypeSuite:
		default:
			errs = append(errs, fmt.Errorf("room %s: unknown type %q", r.ID, r.Type))
		}
		if r.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("room %s: capacity must be positive", r.ID))
		}
		if money(r.PricePerNight).IsNegative() {
			errs = append(errs, fmt.Errorf("room %s: negative price", r.ID))
		}
	}

	for _, a := range f.AddOns {
		if money(a.Price).IsNegative() {
			errs = append(errs, fmt.Errorf("add-on %s: negative price", a.ID))
		}
	}

	services := make(map[string]domain.TaxiType)
	for _, s := range f.TaxiServices {
		switch domain.TaxiType(s.Type) {
		case domain.TaxiTypeVIP, domain.TaxiTypeShared:
		default:
			errs = append(errs, fmt.Errorf("taxi service %s: unknown type %q", s.ID, s.Type))
		}
		if s.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("taxi service %s: capacity must be positive", s.ID))
		}
		if money(s.BasePrice).IsNegative() || money(s.PricePerKm).IsNegative() {
			errs = append(errs, fmt.Errorf("taxi service %s: negative price", s.ID))
		}
		services[s.ID] = domain.TaxiType(s.Type)
	}

	for _, r := range f.Routes {
		if r.DistanceKm < 0 {
			errs = append(errs, fmt.Errorf("route %s-%s: negative distance", r.From, r.To))
		}
		if money(r.AdditionalFee).IsNegative() {
			errs = append(errs, fmt.Errorf("route %s-%s: negative fee", r.From, r.To))
		}
		if r.DiscountPct < 0 || r.DiscountPct > 100 {
			errs = append(errs, fmt.Errorf("route %s-%s: discount out of range", r.From, r.To))
		}
	}

	for _, s := range f.Schedules {
		if services[s.ServiceID] != domain.TaxiTypeShared {
			errs = append(errs, fmt.Errorf("schedule %s: service %q is not a shared taxi", s.ID, s.ServiceID))
		}
		if s.MaxCapacity <= 0 {
			errs = append(errs, fmt.Errorf("schedule %s: max capacity must be positive", s.ID))
		}
		if money(s.PricePerSeat).IsNegative() {
			errs = append(errs, fmt.Errorf("schedule %s: negative price", s.ID))
		}
		if _, err := time.Parse(dateLayout, s.TravelDate); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: travel date: %w", s.ID, err))
		}
	}

	return errors.Join(errs...)
}

// Seed writes the catalog into the stores. Runs that already exist are left
// alone so restarts keep their booked seats.
func Seed(ctx context.Context, f *File, catalog repository.CatalogWriter, schedules repository.ScheduleRepository) error {
	for _, r := range f.Rooms {
		room := &domain.HotelRoom{
			ID:            r.ID,
			Name:          r.Name,
			Type:          domain.RoomType(r.Type),
			Capacity:      r.Capacity,
			PricePerNight: money(r.PricePerNight),
			Amenities:     r.Amenities,
		}
		if err := catalog.UpsertRoom(ctx, room); err != nil {
			return fmt.Errorf("seed room %s: %w", r.ID, err)
		}
	}

	for _, a := range f.AddOns {
		if err := catalog.UpsertAddOn(ctx, &domain.HotelAddOn{ID: a.ID, Name: a.Name, Price: money(a.Price)}); err != nil {
			return fmt.Errorf("seed add-on %s: %w", a.ID, err)
		}
	}

	for _, s := range f.TaxiServices {
		svc := &domain.TaxiService{
			ID:           s.ID,
			Name:         s.Name,
			TaxiType:     domain.TaxiType(s.Type),
			BasePrice:    money(s.BasePrice),
			PricePerKm:   money(s.PricePerKm),
			MaxPetWeight: s.MaxPetWeight,
			Capacity:     s.Capacity,
			Features:     s.Features,
		}
		if err := catalog.UpsertTaxiService(ctx, svc); err != nil {
			return fmt.Errorf("seed taxi service %s: %w", s.ID, err)
		}
	}

	for _, r := range f.Routes {
		pricing := domain.CityPricing{
			FromCity:      r.From,
			ToCity:        r.To,
			DistanceKm:    r.DistanceKm,
			AdditionalFee: money(r.AdditionalFee),
			DiscountPct:   r.DiscountPct,
		}
		if err := catalog.UpsertCityPricing(ctx, pricing); err != nil {
			return fmt.Errorf("seed route %s-%s: %w", r.From, r.To, err)
		}
	}

	for _, s := range f.Schedules {
		date, _ := time.Parse(dateLayout, s.TravelDate)
		schedule := &domain.SharedTaxiSchedule{
			ID:            s.ID,
			TaxiServiceID: s.ServiceID,
			FromCity:      s.From,
			ToCity:        s.To,
			TravelDate:    domain.StartOfDay(date),
			DepartureTime: s.DepartureTime,
			PricePerSeat:  money(s.PricePerSeat),
			MaxCapacity:   s.MaxCapacity,
			Status:        domain.ScheduleStatusActive,
		}
		err := schedules.Create(ctx, schedule)
		if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("seed schedule %s: %w", s.ID, err)
		}
	}

	return nil
}

func money(major float64) domain.Money {
	return domain.Money(math.Round(major * domain.MinorUnitsPerMajor))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/repository"
)

// CartService builds frozen quotes and keeps them in the owner's cart.
type CartService struct {
	catalog repository.CatalogRepository
	ledger  *AvailabilityLedger
	carts   repository.CartStore
	pricing PricingConfig
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewCartService creates a new CartService.
func NewCartService(
	catalog repository.CatalogRepository,
	ledger *AvailabilityLedger,
	carts repository.CartStore,
	pricing PricingConfig,
	m *metrics.Recorder,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		catalog: catalog,
		ledger:  ledger,
		carts:   carts,
		pricing: pricing,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// AddHotelRequest contains the parameters for quoting a hotel stay.
type AddHotelRequest struct {
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	PetCount        int // Optional: 0 means one pet
	AddOnIDs        []string
	SpecialRequests string
}

// AddVipTaxiRequest contains the parameters for quoting a private trip.
type AddVipTaxiRequest struct {
	ServiceID       string
	FromCity        string
	ToCity          string
	TravelDate      time.Time
	IsRoundTrip     bool
	PetWeightKg     float64
	SpecialRequests string
}

// AddSharedTaxiRequest contains the parameters for quoting seats on a run.
type AddSharedTaxiRequest struct {
	ScheduleID      string
	SeatCount       int
	PetWeightKg     float64
	SpecialRequests string
}

// Get returns the owner's cart, or a new empty one.
func (s *CartService) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, ownerKey)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewCart(uuid.New().String(), ownerKey), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddHotel quotes a stay and appends it to the cart.
func (s *CartService) AddHotel(ctx context.Context, ownerKey string, req AddHotelRequest) (*domain.Cart, error) {
	item, err := s.QuoteHotelItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, ownerKey, item)
}

// AddVipTaxi quotes a private trip and appends it to the cart.
func (s *CartService) AddVipTaxi(ctx context.Context, ownerKey string, req AddVipTaxiRequest) (*domain.Cart, error) {
	item, err := s.QuoteVipTaxiItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, ownerKey, item)
}

// AddSharedTaxi quotes seats on a run and appends them to the cart.
// Seats are only reserved at checkout.
func (s *CartService) AddSharedTaxi(ctx context.Context, ownerKey string, req AddSharedTaxiRequest) (*domain.Cart, error) {
	item, err := s.QuoteSharedTaxiItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, ownerKey, item)
}

// Remove deletes an item from the cart.
func (s *CartService) Remove(ctx context.Context, ownerKey, itemID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if err := cart.RemoveItem(itemID); err != nil {
		return nil, err
	}

	return cart, s.save(ctx, cart)
}

// Requote recomputes one item against the current catalog and replaces it.
// This is the only path that changes a quoted price.
func (s *CartService) Requote(ctx context.Context, ownerKey, itemID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	old, err := cart.Item(itemID)
	if err != nil {
		return nil, err
	}

	var fresh domain.CartItem
	switch d := old.Details.(type) {
	case domain.HotelDetails:
		addOnIDs := make([]string, 0, len(d.AddOns))
		for _, a := range d.AddOns {
			addOnIDs = append(addOnIDs, a.ID)
		}
		fresh, err = s.QuoteHotelItem(ctx, AddHotelRequest{
			RoomID:          d.RoomID,
			CheckIn:         d.CheckIn,
			CheckOut:        d.CheckOut,
			PetCount:        d.PetCount,
			AddOnIDs:        addOnIDs,
			SpecialRequests: d.SpecialRequests,
		})
	case domain.TaxiDetails:
		if d.IsShared() {
			fresh, err = s.QuoteSharedTaxiItem(ctx, AddSharedTaxiRequest{
				ScheduleID:      d.ScheduleID,
				SeatCount:       d.SeatCount,
				PetWeightKg:     d.PetWeightKg,
				SpecialRequests: d.SpecialRequests,
			})
		} else {
			fresh, err = s.QuoteVipTaxiItem(ctx, AddVipTaxiRequest{
				ServiceID:       d.ServiceID,
				FromCity:        d.FromCity,
				ToCity:          d.ToCity,
				TravelDate:      d.TravelDate,
				IsRoundTrip:     d.IsRoundTrip,
				PetWeightKg:     d.PetWeightKg,
				SpecialRequests: d.SpecialRequests,
			})
		}
	default:
		return nil, fmt.Errorf("cart item %s: unsupported details %T", itemID, old.Details)
	}
	if err != nil {
		return nil, err
	}

	fresh.ID = old.ID
	if err := cart.ReplaceItem(itemID, fresh); err != nil {
		return nil, err
	}

	s.logger.Info("cart item requoted",
		"owner", ownerKey,
		"item_id", itemID,
		"old_price", old.Price.String(),
		"new_price", fresh.Price.String())

	return cart, s.save(ctx, cart)
}

// Clear empties the owner's cart.
func (s *CartService) Clear(ctx context.Context, ownerKey string) error {
	return s.carts.Delete(ctx, ownerKey)
}

// QuoteHotelItem prices a stay without touching any cart.
func (s *CartService) QuoteHotelItem(ctx context.Context, req AddHotelRequest) (domain.CartItem, error) {
	room, err := s.catalog.GetRoom(ctx, req.RoomID)
	if err != nil {
		return domain.CartItem{}, err
	}

	pets := req.PetCount
	if pets <= 0 {
		pets = 1
	}
	if pets > room.Capacity {
		return domain.CartItem{}, fmt.Errorf("room %s holds %d pets: %w", room.ID, room.Capacity, ErrPetCapacityExceeded)
	}

	addOns := make([]domain.HotelAddOn, 0, len(req.AddOnIDs))
	for _, id := range req.AddOnIDs {
		addOn, err := s.catalog.GetAddOn(ctx, id)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("add-on %s: %w", id, err)
		}
		addOns = append(addOns, *addOn)
	}

	quote, err := QuoteHotel(room, req.CheckIn, req.CheckOut, addOns...)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ID:          uuid.New().String(),
		Kind:        domain.ItemKindHotel,
		ReferenceID: room.ID,
		Quantity:    quote.Nights,
		Price:       quote.Total,
		Details: domain.HotelDetails{
			RoomID:          room.ID,
			CheckIn:         req.CheckIn,
			CheckOut:        req.CheckOut,
			Nights:          quote.Nights,
			PetCount:        pets,
			AddOns:          addOns,
			SpecialRequests: req.SpecialRequests,
		},
		QuotedAt: s.now(),
	}, nil
}

// QuoteVipTaxiItem prices a private trip without touching any cart.
func (s *CartService) QuoteVipTaxiItem(ctx context.Context, req AddVipTaxiRequest) (domain.CartItem, error) {
	service, err := s.catalog.GetTaxiService(ctx, req.ServiceID)
	if err != nil {
		return domain.CartItem{}, err
	}

	if err := checkPetWeight(service, req.PetWeightKg); err != nil {
		return domain.CartItem{}, err
	}

	pricer, err := s.Pricer(ctx)
	if err != nil {
		return domain.CartItem{}, err
	}

	quote, err := pricer.QuoteVipTaxi(service, req.FromCity, req.ToCity, req.IsRoundTrip)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ID:          uuid.New().String(),
		Kind:        domain.ItemKindTaxi,
		ReferenceID: service.ID,
		Quantity:    1,
		Price:       quote.Total,
		Details: domain.TaxiDetails{
			ServiceID:       service.ID,
			TaxiType:        domain.TaxiTypeVIP,
			FromCity:        req.FromCity,
			ToCity:          req.ToCity,
			TravelDate:      domain.StartOfDay(req.TravelDate),
			IsRoundTrip:     req.IsRoundTrip,
			DistanceKm:      quote.DistanceKm,
			PetWeightKg:     req.PetWeightKg,
			SpecialRequests: req.SpecialRequests,
		},
		QuotedAt: s.now(),
	}, nil
}

// QuoteSharedTaxiItem prices seats on a run without touching any cart.
func (s *CartService) QuoteSharedTaxiItem(ctx context.Context, req AddSharedTaxiRequest) (domain.CartItem, error) {
	schedule, err := s.ledger.GetSchedule(ctx, req.ScheduleID)
	if err != nil {
		return domain.CartItem{}, err
	}

	service, err := s.catalog.GetTaxiService(ctx, schedule.TaxiServiceID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if service.TaxiType != domain.TaxiTypeShared {
		return domain.CartItem{}, ErrWrongTaxiType
	}

	if err := checkPetWeight(service, req.PetWeightKg); err != nil {
		return domain.CartItem{}, err
	}

	if schedule.TravelDate.Before(domain.StartOfDay(s.now())) {
		return domain.CartItem{}, fmt.Errorf("schedule %s departed: %w", schedule.ID, ErrScheduleNotBookable)
	}

	total, err := QuoteSharedTaxiSeats(schedule, req.SeatCount)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ID:          uuid.New().String(),
		Kind:        domain.ItemKindTaxi,
		ReferenceID: service.ID,
		Quantity:    req.SeatCount,
		Price:       total,
		Details: domain.TaxiDetails{
			ServiceID:       service.ID,
			TaxiType:        domain.TaxiTypeShared,
			FromCity:        schedule.FromCity,
			ToCity:          schedule.ToCity,
			TravelDate:      schedule.TravelDate,
			ScheduleID:      schedule.ID,
			SeatCount:       req.SeatCount,
			PetWeightKg:     req.PetWeightKg,
			SpecialRequests: req.SpecialRequests,
		},
		QuotedAt: s.now(),
	}, nil
}

// Pricer builds a Pricer over the current route table.
func (s *CartService) Pricer(ctx context.Context) (*Pricer, error) {
	routes, err := s.catalog.ListCityPricing(ctx)
	if err != nil {
		return nil, err
	}
	return NewPricer(routes, s.pricing), nil
}

func (s *CartService) append(ctx context.Context, ownerKey string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := s.Get(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	cart.AddItem(item)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.Quote(string(item.Kind))
	s.logger.Info("cart item added",
		"owner", ownerKey,
		"item_id", item.ID,
		"kind", item.Kind,
		"price", item.Price.String())

	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now()
	return s.carts.Save(ctx, cart)
}

func checkPetWeight(service *domain.TaxiService, weightKg float64) error {
	if service.MaxPetWeight > 0 && weightKg > service.MaxPetWeight {
		return fmt.Errorf("service %s allows %.1f kg: %w", service.ID, service.MaxPetWeight, ErrPetTooHeavy)
	}
	return nil
}

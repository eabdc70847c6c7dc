package service

import (
	"math"
	"time"

	"pethotel/internal/domain"
)

// DistanceEstimator resolves a distance for city pairs with no route entry.
// Implementations must be deterministic.
type DistanceEstimator interface {
	EstimateKm(from, to string) (float64, bool)
}

// FixedDistanceEstimator answers every unmapped pair with the same distance.
type FixedDistanceEstimator struct {
	Km float64
}

// EstimateKm implements DistanceEstimator.
func (e FixedDistanceEstimator) EstimateKm(_, _ string) (float64, bool) {
	return e.Km, e.Km > 0
}

// PricingConfig contains VIP distance resolution settings.
type PricingConfig struct {
	SameCityDistanceKm float64           // Distance used when both ends are in one city
	Estimator          DistanceEstimator // Optional: nil means unmapped routes fail
}

// DefaultPricingConfig returns the default pricing configuration.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		SameCityDistanceKm: 10,
	}
}

// HotelQuote is the price of a hotel stay.
type HotelQuote struct {
	Nights int
	Total  domain.Money
}

// QuoteHotel prices a stay as nights times the nightly rate plus add-ons.
// A partial day counts as a full night.
func QuoteHotel(room *domain.HotelRoom, checkIn, checkOut time.Time, addOns ...domain.HotelAddOn) (HotelQuote, error) {
	if !checkOut.After(checkIn) {
		return HotelQuote{}, ErrInvalidDateRange
	}

	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))

	total := room.PricePerNight.Mul(nights)
	for _, addOn := range addOns {
		total = total.Add(addOn.Price)
	}

	return HotelQuote{Nights: nights, Total: total}, nil
}

// VipQuote is the price of a VIP trip with every intermediate step kept.
type VipQuote struct {
	DistanceKm  float64
	Base        domain.Money // basePrice + pricePerKm * distance
	AfterTrip   domain.Money // doubled for round trips
	AfterFee    domain.Money // plus the route fee
	Discount    domain.Money
	Total       domain.Money
	CityPricing *domain.CityPricing // nil when no route entry applied
}

// Pricer quotes VIP trips against a fixed table of inter-city routes.
type Pricer struct {
	routes []domain.CityPricing
	config PricingConfig
}

// NewPricer creates a Pricer over the given routes.
func NewPricer(routes []domain.CityPricing, config PricingConfig) *Pricer {
	return &Pricer{routes: routes, config: config}
}

// LookupRoute returns the route entry for a city pair in either direction.
func (p *Pricer) LookupRoute(from, to string) (*domain.CityPricing, bool) {
	for i := range p.routes {
		if p.routes[i].Matches(from, to) {
			route := p.routes[i]
			return &route, true
		}
	}
	return nil, false
}

// ResolveDistance finds the distance of a trip and the route entry, if any.
func (p *Pricer) ResolveDistance(from, to string) (float64, *domain.CityPricing, error) {
	if route, ok := p.LookupRoute(from, to); ok {
		return route.DistanceKm, route, nil
	}

	if domain.SameCity(from, to) {
		return p.config.SameCityDistanceKm, nil, nil
	}

	if p.config.Estimator != nil {
		if km, ok := p.config.Estimator.EstimateKm(from, to); ok {
			return km, nil, nil
		}
	}

	return 0, nil, ErrRouteNotFound
}

// QuoteVipTaxi prices a private trip. The round trip multiplier applies
// before the route fee and the percentage discount.
func (p *Pricer) QuoteVipTaxi(service *domain.TaxiService, from, to string, roundTrip bool) (VipQuote, error) {
	if service.TaxiType != domain.TaxiTypeVIP {
		return VipQuote{}, ErrWrongTaxiType
	}

	distance, route, err := p.ResolveDistance(from, to)
	if err != nil {
		return VipQuote{}, err
	}

	quote := PriceVipTrip(service, distance, roundTrip, route)
	return quote, nil
}

// PriceVipTrip applies the VIP formula to a known distance.
func PriceVipTrip(service *domain.TaxiService, distanceKm float64, roundTrip bool, route *domain.CityPricing) VipQuote {
	q := VipQuote{DistanceKm: distanceKm, CityPricing: route}

	q.Base = service.BasePrice.Add(service.PricePerKm.MulFloat(distanceKm))

	q.AfterTrip = q.Base
	if roundTrip {
		q.AfterTrip = q.Base.Mul(2)
	}

	q.AfterFee = q.AfterTrip
	if route != nil {
		q.AfterFee = q.AfterTrip.Add(route.AdditionalFee)
		q.Discount = q.AfterFee.Percent(route.DiscountPct)
	}

	q.Total = q.AfterFee.Sub(q.Discount)
	return q
}

// QuoteSharedTaxiSeats prices seats on a shared run.
func QuoteSharedTaxiSeats(schedule *domain.SharedTaxiSchedule, seatCount int) (domain.Money, error) {
	if schedule.Status != domain.ScheduleStatusActive {
		return 0, ErrScheduleNotBookable
	}

	remaining := schedule.RemainingSeats()
	if seatCount < 1 || seatCount > remaining {
		return 0, &SeatCountError{Requested: seatCount, Remaining: remaining}
	}

	return schedule.PricePerSeat.Mul(seatCount), nil
}

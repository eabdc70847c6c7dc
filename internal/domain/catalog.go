package domain

import "strings"

// RoomType represents the category of a hotel room.
type RoomType string

const (
	RoomTypeStandard RoomType = "standard"
	RoomTypeDeluxe   RoomType = "deluxe"
	RoomTypeSuite    RoomType = "suite"
)

// HotelRoom is immutable reference data for a bookable pet hotel room.
type HotelRoom struct {
	ID            string
	Name          string
	Type          RoomType
	Capacity      int // Maximum number of pets
	PricePerNight Money
	Amenities     []string
}

// HotelAddOn is an optional service that can be attached to a hotel stay.
type HotelAddOn struct {
	ID    string
	Name  string
	Price Money
}

// TaxiType distinguishes private and shared taxi services.
type TaxiType string

const (
	TaxiTypeVIP    TaxiType = "vip"
	TaxiTypeShared TaxiType = "shared"
)

// TaxiService is reference data for a pet taxi offering.
type TaxiService struct {
	ID           string
	Name         string
	TaxiType     TaxiType
	BasePrice    Money
	PricePerKm   Money
	MaxPetWeight float64 // Kilograms
	Capacity     int
	Features     []string
}

// CityPricing describes a known inter-city route.
// Lookup is symmetric: (A, B) and (B, A) resolve to the same entry.
type CityPricing struct {
	FromCity      string
	ToCity        string
	DistanceKm    float64
	AdditionalFee Money
	DiscountPct   float64 // 0..100
}

// Matches reports whether the entry covers the given city pair in either direction.
func (p CityPricing) Matches(from, to string) bool {
	a, b := NormalizeCity(p.FromCity), NormalizeCity(p.ToCity)
	x, y := NormalizeCity(from), NormalizeCity(to)
	return (a == x && b == y) || (a == y && b == x)
}

// NormalizeCity folds a city name for comparison.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// SameCity reports whether both names refer to the same city.
func SameCity(from, to string) bool {
	return NormalizeCity(from) == NormalizeCity(to)
}

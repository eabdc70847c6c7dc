// Package record converts domain values with sealed variants into
// JSON-friendly records for the Redis and PostgreSQL stores.
package record

import (
	"fmt"
	"time"

	"pethotel/internal/domain"
)

// HotelDetails is the stored form of domain.HotelDetails.
type HotelDetails struct {
	RoomID          string    `json:"room_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Nights          int       `json:"nights"`
	PetCount        int       `json:"pet_count"`
	AddOns          []AddOn   `json:"add_ons,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// AddOn is the stored form of domain.HotelAddOn.
type AddOn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// TaxiDetails is the stored form of domain.TaxiDetails.
type TaxiDetails struct {
	ServiceID       string    `json:"service_id"`
	TaxiType        string    `json:"taxi_type"`
	FromCity        string    `json:"from_city"`
	ToCity          string    `json:"to_city"`
	TravelDate      time.Time `json:"travel_date"`
	IsRoundTrip     bool      `json:"is_round_trip,omitempty"`
	DistanceKm      float64   `json:"distance_km,omitempty"`
	ScheduleID      string    `json:"schedule_id,omitempty"`
	SeatCount       int       `json:"seat_count,omitempty"`
	PetWeightKg     float64   `json:"pet_weight_kg,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// CartItem is the stored form of domain.CartItem. Exactly one of Hotel or
// Taxi is set, matching Kind.
type CartItem struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	ReferenceID string        `json:"reference_id"`
	Quantity    int           `json:"quantity"`
	Price       int64         `json:"price"`
	QuotedAt    time.Time     `json:"quoted_at"`
	Hotel       *HotelDetails `json:"hotel,omitempty"`
	Taxi        *TaxiDetails  `json:"taxi,omitempty"`
}

// Cart is the stored form of domain.Cart.
type Cart struct {
	ID        string     `json:"id"`
	OwnerKey  string     `json:"owner_key"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Identity is the stored form of domain.Identity.
type Identity struct {
	Kind   string `json:"kind"` // "guest" or "user"
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}

// Invoice is the stored form of domain.InvoiceInfo.
type Invoice struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Surname     string `json:"surname,omitempty"`
	NationalID  string `json:"national_id,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	Address     string `json:"address,omitempty"`
}

// FromCartItem converts a domain item to its record.
func FromCartItem(item domain.CartItem) (CartItem, error) {
	rec := CartItem{
		ID:          item.ID,
		Kind:        string(item.Kind),
		ReferenceID: item.ReferenceID,
		Quantity:    item.Quantity,
		Price:       int64(item.Price),
		QuotedAt:    item.QuotedAt,
	}

	switch d := item.Details.(type) {
	case domain.HotelDetails:
		addOns := make([]AddOn, 0, len(d.AddOns))
		for _, a := range d.AddOns {
			addOns = append(addOns, AddOn{ID: a.ID, Name: a.Name, Price: int64(a.Price)})
		}
		rec.Hotel = &HotelDetails{
			RoomID:          d.RoomID,
			CheckIn:         d.CheckIn,
			CheckOut:        d.CheckOut,
			Nights:          d.Nights,
			PetCount:        d.PetCount,
			AddOns:          addOns,
			SpecialRequests: d.SpecialRequests,
		}
	case domain.TaxiDetails:
		rec.Taxi = &TaxiDetails{
			ServiceID:       d.ServiceID,
			TaxiType:        string(d.TaxiType),
			FromCity:        d.FromCity,
			ToCity:          d.ToCity,
			TravelDate:      d.TravelDate,
			IsRoundTrip:     d.IsRoundTrip,
			DistanceKm:      d.DistanceKm,
			ScheduleID:      d.ScheduleID,
			SeatCount:       d.SeatCount,
			PetWeightKg:     d.PetWeightKg,
			SpecialRequests: d.SpecialRequests,
		}
	default:
		return CartItem{}, fmt.Errorf("cart item %s: unsupported details %T", item.ID, item.Details)
	}

	return rec, nil
}

// ToCartItem converts a record back to a domain item.
func (r CartItem) ToCartItem() (domain.CartItem, error) {
	item := domain.CartItem{
		ID:          r.ID,
		Kind:        domain.ItemKind(r.Kind),
		ReferenceID: r.ReferenceID,
		Quantity:    r.Quantity,
		Price:       domain.Money(r.Price),
		QuotedAt:    r.QuotedAt,
	}

	switch {
	case item.Kind == domain.ItemKindHotel && r.Hotel != nil:
		addOns := make([]domain.HotelAddOn, 0, len(r.Hotel.AddOns))
		for _, a := range r.Hotel.AddOns {
			addOns = append(addOns, domain.HotelAddOn{ID: a.ID, Name: a.Name, Price: domain.Money(a.Price)})
		}
		item.Details = domain.HotelDetails{
			RoomID:          r.Hotel.RoomID,
			CheckIn:         r.Hotel.CheckIn,
			CheckOut:        r.Hotel.CheckOut,
			Nights:          r.Hotel.Nights,
			PetCount:        r.Hotel.PetCount,
			AddOns:          addOns,
			SpecialRequests: r.Hotel.SpecialRequests,
		}
	case item.Kind == domain.ItemKindTaxi && r.Taxi != nil:
		item.Details = domain.TaxiDetails{
			ServiceID:       r.Taxi.ServiceID,
			TaxiType:        domain.TaxiType(r.Taxi.TaxiType),
			FromCity:        r.Taxi.FromCity,
			ToCity:          r.Taxi.ToCity,
			TravelDate:      r.Taxi.TravelDate,
			IsRoundTrip:     r.Taxi.IsRoundTrip,
			DistanceKm:      r.Taxi.DistanceKm,
			ScheduleID:      r.Taxi.ScheduleID,
			SeatCount:       r.Taxi.SeatCount,
			PetWeightKg:     r.Taxi.PetWeightKg,
			SpecialRequests: r.Taxi.SpecialRequests,
		}
	default:
		return domain.CartItem{}, fmt.Errorf("cart item %s: kind %q has no matching details", r.ID, r.Kind)
	}

	return item, nil
}

// FromCartItems converts a list of domain items.
func FromCartItems(items []domain.CartItem) ([]CartItem, error) {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		rec, err := FromCartItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ToCartItems converts a list of records.
func ToCartItems(records []CartItem) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, 0, len(records))
	for _, rec := range records {
		item, err := rec.ToCartItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// FromCart converts a cart to its record.
func FromCart(cart *domain.Cart) (Cart, error) {
	items, err := FromCartItems(cart.Items)
	if err != nil {
		return Cart{}, err
	}
	return Cart{ID: cart.ID, OwnerKey: cart.OwnerKey, Items: items, UpdatedAt: cart.UpdatedAt}, nil
}

// ToCart converts a record back to a cart.
func (r Cart) ToCart() (*domain.Cart, error) {
	items, err := ToCartItems(r.Items)
	if err != nil {
		return nil, err
	}
	return &domain.Cart{ID: r.ID, OwnerKey: r.OwnerKey, Items: items, UpdatedAt: r.UpdatedAt}, nil
}

// FromIdentity converts an identity to its record.
func FromIdentity(identity domain.Identity) (Identity, error) {
	switch id := identity.(type) {
	case domain.GuestInfo:
		return Identity{Kind: "guest", Name: id.Name, Email: id.Email, Phone: id.Phone}, nil
	case domain.UserRef:
		return Identity{Kind: "user", UserID: id.ID, Name: id.Name, Email: id.Email, Phone: id.Phone}, nil
	default:
		return Identity{}, fmt.Errorf("unsupported identity %T", identity)
	}
}

// ToIdentity converts a record back to an identity.
func (r Identity) ToIdentity() (domain.Identity, error) {
	switch r.Kind {
	case "guest":
		return domain.GuestInfo{Name: r.Name, Email: r.Email, Phone: r.Phone}, nil
	case "user":
		return domain.UserRef{ID: r.UserID, Name: r.Name, Email: r.Email, Phone: r.Phone}, nil
	default:
		return nil, fmt.Errorf("unknown identity kind %q", r.Kind)
	}
}

// FromInvoice converts invoice info to its record. A nil invoice yields an empty record.
func FromInvoice(invoice domain.InvoiceInfo) (Invoice, error) {
	switch inv := invoice.(type) {
	case nil:
		return Invoice{}, nil
	case domain.IndividualInvoice:
		return Invoice{Type: string(domain.InvoiceTypeIndividual), Name: inv.Name, Surname: inv.Surname, NationalID: inv.NationalID}, nil
	case domain.CorporateInvoice:
		return Invoice{Type: string(domain.InvoiceTypeCorporate), CompanyName: inv.CompanyName, TaxID: inv.TaxID, Address: inv.Address}, nil
	default:
		return Invoice{}, fmt.Errorf("unsupported invoice %T", invoice)
	}
}

// ToInvoice converts a record back to invoice info. An empty record yields nil.
func (r Invoice) ToInvoice() (domain.InvoiceInfo, error) {
	switch domain.InvoiceType(r.Type) {
	case "":
		return nil, nil
	case domain.InvoiceTypeIndividual:
		return domain.IndividualInvoice{Name: r.Name, Surname: r.Surname, NationalID: r.NationalID}, nil
	case domain.InvoiceTypeCorporate:
		return domain.CorporateInvoice{CompanyName: r.CompanyName, TaxID: r.TaxID, Address: r.Address}, nil
	default:
		return nil, fmt.Errorf("unknown invoice type %q", r.Type)
	}
}

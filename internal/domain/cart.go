package domain

import (
	"errors"
	"time"
)

// ErrCartItemNotFound is returned when a cart item id is not in the cart.
var ErrCartItemNotFound = errors.New("cart item not found")

// ItemKind identifies what a cart item books.
type ItemKind string

const (
	ItemKindHotel ItemKind = "hotel"
	ItemKindTaxi  ItemKind = "taxi"
)

// BookingDetails captures the quote inputs of a cart item.
// Implemented only by HotelDetails and TaxiDetails.
type BookingDetails interface {
	Kind() ItemKind
	isBookingDetails()
}

// HotelDetails are the inputs of a hotel stay quote.
type HotelDetails struct {
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Nights          int
	PetCount        int
	AddOns          []HotelAddOn
	SpecialRequests string
}

func (HotelDetails) Kind() ItemKind    { return ItemKindHotel }
func (HotelDetails) isBookingDetails() {}

// TaxiDetails are the inputs of a VIP or shared taxi quote.
// ScheduleID and SeatCount are set only for shared runs.
type TaxiDetails struct {
	ServiceID       string
	TaxiType        TaxiType
	FromCity        string
	ToCity          string
	TravelDate      time.Time
	IsRoundTrip     bool
	DistanceKm      float64
	ScheduleID      string
	SeatCount       int
	PetWeightKg     float64
	SpecialRequests string
}

func (TaxiDetails) Kind() ItemKind    { return ItemKindTaxi }
func (TaxiDetails) isBookingDetails() {}

// IsShared reports whether the details reference a shared taxi run.
func (d TaxiDetails) IsShared() bool {
	return d.TaxiType == TaxiTypeShared && d.ScheduleID != ""
}

// CartItem is a frozen quote. Price is never recomputed implicitly.
type CartItem struct {
	ID          string
	Kind        ItemKind
	ReferenceID string // Room or taxi service id
	Quantity    int
	Price       Money
	Details     BookingDetails
	QuotedAt    time.Time
}

// Cart is an ordered collection of quoted items owned by one identity.
type Cart struct {
	ID        string
	OwnerKey  string
	Items     []CartItem
	UpdatedAt time.Time
}

// NewCart creates an empty cart for the given owner.
func NewCart(id, ownerKey string) *Cart {
	return &Cart{ID: id, OwnerKey: ownerKey}
}

// AddItem appends an item. Items are never deduplicated.
func (c *Cart) AddItem(item CartItem) {
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the item with the given id.
func (c *Cart) RemoveItem(id string) error {
	for i, item := range c.Items {
		if item.ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}

// ReplaceItem swaps an existing item for a re-quoted one at the same position.
func (c *Cart) ReplaceItem(id string, item CartItem) error {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i] = item
			return nil
		}
	}
	return ErrCartItemNotFound
}

// Item returns the item with the given id.
func (c *Cart) Item(id string) (CartItem, error) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, nil
		}
	}
	return CartItem{}, ErrCartItemNotFound
}

// ItemsInOrder returns a copy of the items in insertion order.
func (c *Cart) ItemsInOrder() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}

// Total sums the frozen prices of all items.
func (c *Cart) Total() Money {
	var total Money
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear removes all items.
func (c *Cart) Clear() {
	c.Items = nil
}

package domain

import "time"

// OrderStatus represents the current status of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order is created only after a successful charge and is immutable once paid.
// A failed order with NeedsRefund set means money was captured but the
// bookings could not be committed; it awaits manual reconciliation.
type Order struct {
	ID            string
	CheckoutID    string
	Identity      Identity
	Items         []CartItem
	TotalPrice    Money
	Status        OrderStatus
	PaymentMethod PaymentMethod
	TransactionID string
	InvoiceNumber string
	Invoice       InvoiceInfo
	NeedsRefund   bool
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the committed reservation for one order item.
type Booking struct {
	ID              string
	OrderID         string
	Type            ItemKind
	ReferenceID     string
	CheckIn         time.Time // Hotel stays
	CheckOut        time.Time // Hotel stays
	ScheduledDate   time.Time // Taxi trips
	ScheduleID      string    // Shared taxi runs
	SeatCount       int       // Shared taxi runs
	TotalPrice      Money
	Status          BookingStatus
	SpecialRequests string
	CreatedAt       time.Time
}

// HoldsSeats reports whether the booking occupies seats on a shared run.
func (b *Booking) HoldsSeats() bool {
	return b.ScheduleID != "" && b.SeatCount > 0
}

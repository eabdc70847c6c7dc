package repository

import (
	"context"

	"pethotel/internal/domain"
)

// OrderRepository defines the persistence operations for orders and bookings.
type OrderRepository interface {
	// CreateWithBookings persists an order together with its bookings.
	CreateWithBookings(ctx context.Context, order *domain.Order, bookings []*domain.Booking) error

	// Create persists an order without bookings (failed orders).
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetBookings retrieves the bookings of an order.
	GetBookings(ctx context.Context, orderID string) ([]*domain.Booking, error)

	// GetBooking retrieves a booking by ID.
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)

	// UpdateBookingStatus updates the status of a booking.
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error

	// ListNeedingRefund retrieves failed orders whose payment was captured.
	ListNeedingRefund(ctx context.Context) ([]*domain.Order, error)
}

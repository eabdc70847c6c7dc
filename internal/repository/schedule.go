package repository

import (
	"context"
	"time"

	"pethotel/internal/domain"
)

// ScheduleRepository defines the persistence operations for shared taxi runs.
// IncrementBooked is the only way booked_count grows.
type ScheduleRepository interface {
	// Create persists a new schedule.
	Create(ctx context.Context, schedule *domain.SharedTaxiSchedule) error

	// GetByID retrieves a schedule by ID.
	GetByID(ctx context.Context, id string) (*domain.SharedTaxiSchedule, error)

	// ListByService retrieves all schedules of a taxi service.
	ListByService(ctx context.Context, serviceID string) ([]*domain.SharedTaxiSchedule, error)

	// IncrementBooked atomically adds seats if booked+seats <= max, the run is
	// active and it travels on or after earliest.
	// Returns ErrInsufficientSeats, with the current state, when the condition fails.
	IncrementBooked(ctx context.Context, id string, seats int, earliest time.Time) (*domain.SharedTaxiSchedule, error)

	// DecrementBooked subtracts seats, never going below zero.
	DecrementBooked(ctx context.Context, id string, seats int) (*domain.SharedTaxiSchedule, error)

	// UpdateStatus updates the status of a schedule.
	UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) error
}

package repository

import (
	"context"

	"pethotel/internal/domain"
)

// PaymentAttemptRepository defines the persistence operations for charge attempts.
type PaymentAttemptRepository interface {
	// Create persists a new attempt.
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error

	// GetByID retrieves an attempt by ID.
	GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error)

	// GetByIdempotencyKey retrieves an attempt by its idempotency key.
	// Returns nil if no attempt exists with the given key.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentAttempt, error)

	// ListByCheckout returns all attempts of a checkout, oldest first.
	ListByCheckout(ctx context.Context, checkoutID string) ([]*domain.PaymentAttempt, error)

	// UpdateResult records the outcome of an attempt.
	UpdateResult(ctx context.Context, id string, status domain.PaymentStatus, transactionID, reason string) error
}

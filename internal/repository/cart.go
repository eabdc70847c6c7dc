package repository

import (
	"context"

	"pethotel/internal/domain"
)

// CartStore persists carts scoped to an owner key.
type CartStore interface {
	// Get retrieves the cart of an owner. Returns ErrNotFound if none exists.
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)

	// Save stores the cart under its owner key.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart of an owner.
	Delete(ctx context.Context, ownerKey string) error
}

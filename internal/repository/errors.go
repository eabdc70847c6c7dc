package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when an entity with the same id is already stored.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInsufficientSeats is returned when a conditional seat increment does not apply.
	ErrInsufficientSeats = errors.New("insufficient seats")
)

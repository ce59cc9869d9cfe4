// Package domain defines the core customer domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/errors"
)

// Customer represents a customer placing orders
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain-specific errors for customer operations.
var (
	// ErrCustomerNotFound indicates the requested customer does not exist.
	ErrCustomerNotFound = errors.Wrap(errors.ErrNotFound, "customer not found")

	// ErrCustomerAlreadyExists indicates a customer with the same email already exists.
	ErrCustomerAlreadyExists = errors.Wrap(errors.ErrConflict, "customer already exists")
)

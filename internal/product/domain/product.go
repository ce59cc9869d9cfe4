// Package domain defines the core product domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/errors"
)

// Product represents a sellable item with tracked stock
type Product struct {
	ID            uuid.UUID
	Name          string
	SKU           string
	Description   string
	Price         float64
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Domain-specific errors for product operations.
var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")

	// ErrProductAlreadyExists indicates a product with the same SKU already exists.
	ErrProductAlreadyExists = errors.Wrap(errors.ErrConflict, "product already exists")

	// ErrInsufficientStock indicates the requested quantity exceeds available stock.
	ErrInsufficientStock = errors.Wrap(errors.ErrConflict, "insufficient stock")
)

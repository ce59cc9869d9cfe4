// Package domain defines the core order domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/errors"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid reports whether the status is one of the known order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
// Terminal statuses are sticky: late or duplicate inventory feedback for an
// order that already completed, failed, or was cancelled is ignored.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows moving from s to
// target. PENDING may move to any other state, PROCESSING to any terminal
// state, terminal states to none.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() || !target.IsValid() || s == target {
		return false
	}
	if s == OrderStatusPending {
		return true
	}
	// PROCESSING
	return target.IsTerminal()
}

// Order represents a customer order for a quantity of a single product
type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	TotalAmount float64
	Status      OrderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder creates a pending order with creation timestamps set, so callers
// get a fully populated entity back even though the database also stamps the
// row on insert.
func NewOrder(customerID, productID uuid.UUID, quantity int, totalAmount float64) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:          uuid.Must(uuid.NewV7()),
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: totalAmount,
		Status:      OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Domain-specific errors for order operations.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrInvalidStatus indicates an unknown order status value.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid order status")
)

// Package dto provides data transfer objects for the order HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// OrderResponse represents the API response for an order
type OrderResponse struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderListResponse represents the API response for a paginated order list
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

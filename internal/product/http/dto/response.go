// Package dto provides data transfer objects for the product HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// ProductResponse represents the API response for a product
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductListResponse represents the API response for a paginated product list
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

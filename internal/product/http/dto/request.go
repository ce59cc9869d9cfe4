// Package dto provides data transfer objects for the product HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/orders/internal/validation"
)

// CreateProductRequest represents the API request for product creation
type CreateProductRequest struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// Validate validates the CreateProductRequest using the jellydator/validation library
func (r *CreateProductRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.SKU,
			validation.Required.Error("sku is required"),
			appValidation.NotBlank,
			validation.Length(1, 100).Error("sku must be between 1 and 100 characters"),
		),
		validation.Field(&r.Description,
			validation.Length(0, 1000).Error("description must be at most 1000 characters"),
		),
		validation.Field(&r.Price,
			validation.Required.Error("price is required"),
			validation.Min(0.01).Error("price must be greater than zero"),
			appValidation.DecimalPlaces{Max: 2},
		),
		validation.Field(&r.StockQuantity,
			validation.Min(0).Error("stock_quantity must be non-negative"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// UpdateProductRequest represents the API request for product updates
type UpdateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// Validate validates the UpdateProductRequest using the jellydator/validation library
func (r *UpdateProductRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Description,
			validation.Length(0, 1000).Error("description must be at most 1000 characters"),
		),
		validation.Field(&r.Price,
			validation.Required.Error("price is required"),
			validation.Min(0.01).Error("price must be greater than zero"),
			appValidation.DecimalPlaces{Max: 2},
		),
		validation.Field(&r.StockQuantity,
			validation.Min(0).Error("stock_quantity must be non-negative"),
		),
	)
	return appValidation.WrapValidationError(err)
}

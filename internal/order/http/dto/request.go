// Package dto provides data transfer objects for the order HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/orders/internal/validation"
)

// CreateOrderRequest represents the API request for order creation
type CreateOrderRequest struct {
	CustomerID  string  `json:"customer_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
}

// Validate validates the CreateOrderRequest using the jellydator/validation library
func (r *CreateOrderRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.CustomerID,
			validation.Required.Error("customer_id is required"),
			appValidation.NotBlank,
		),
		validation.Field(&r.ProductID,
			validation.Required.Error("product_id is required"),
			appValidation.NotBlank,
		),
		validation.Field(&r.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(1).Error("quantity must be greater than zero"),
			validation.Max(1000).Error("quantity must be at most 1000"),
		),
		validation.Field(&r.TotalAmount,
			validation.Required.Error("total_amount is required"),
			validation.Min(0.01).Error("total_amount must be greater than zero"),
			validation.Max(100000.0).Error("total_amount must be at most 100000"),
			appValidation.DecimalPlaces{Max: 2},
		),
	)
	return appValidation.WrapValidationError(err)
}

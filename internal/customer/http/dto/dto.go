// Package dto provides data transfer objects for the customer HTTP layer.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/customer/domain"
	"github.com/allisson/orders/internal/customer/usecase"
	appValidation "github.com/allisson/orders/internal/validation"
)

// CreateCustomerRequest represents the API request for customer creation
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the CreateCustomerRequest using the jellydator/validation library
func (r *CreateCustomerRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// UpdateCustomerRequest represents the API request for customer updates
type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the UpdateCustomerRequest using the jellydator/validation library
func (r *UpdateCustomerRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CustomerResponse represents the API response for a customer
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerListResponse represents the API response for a paginated customer list
type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

// ToCreateCustomerInput converts a CreateCustomerRequest DTO to a use case input
func ToCreateCustomerInput(req CreateCustomerRequest) usecase.CreateCustomerInput {
	return usecase.CreateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
	}
}

// ToUpdateCustomerInput converts an UpdateCustomerRequest DTO to a use case input
func ToUpdateCustomerInput(req UpdateCustomerRequest) usecase.UpdateCustomerInput {
	return usecase.UpdateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
	}
}

// ToCustomerResponse converts a domain Customer model to a CustomerResponse DTO
func ToCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

// ToCustomerListResponse converts domain Customer models to a CustomerListResponse DTO
func ToCustomerListResponse(customers []*domain.Customer) CustomerListResponse {
	responses := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, ToCustomerResponse(customer))
	}
	return CustomerListResponse{Customers: responses}
}

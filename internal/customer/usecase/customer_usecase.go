// Package usecase implements the customer business logic and orchestrates customer domain operations.
package usecase

import (
	"context"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/customer/domain"
	appValidation "github.com/allisson/orders/internal/validation"
)

// CreateCustomerInput contains the input data for customer creation
type CreateCustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateCustomerInput contains the input data for customer updates
type UpdateCustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UseCase defines the interface for customer business logic operations
type UseCase interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, offset, limit int) ([]*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository interface defines customer repository operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerUseCase handles customer-related business logic
type CustomerUseCase struct {
	customerRepo CustomerRepository
}

// NewCustomerUseCase creates a new CustomerUseCase
func NewCustomerUseCase(customerRepo CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{
		customerRepo: customerRepo,
	}
}

// validateCreateCustomerInput validates the creation input using jellydator/validation
func (uc *CustomerUseCase) validateCreateCustomerInput(input CreateCustomerInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateCustomer creates a new customer
func (uc *CustomerUseCase) CreateCustomer(
	ctx context.Context,
	input CreateCustomerInput,
) (*domain.Customer, error) {
	// Normalize before validating so padded or mixed-case emails are accepted
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := uc.validateCreateCustomerInput(input); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  input.Name,
		Email: input.Email,
	}

	if err := uc.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return uc.customerRepo.GetByID(ctx, id)
}

// GetCustomerByEmail retrieves a customer by email
func (uc *CustomerUseCase) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return uc.customerRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// ListCustomers retrieves customers with pagination
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, offset, limit int) ([]*domain.Customer, error) {
	return uc.customerRepo.List(ctx, offset, limit)
}

// validateUpdateCustomerInput validates the update input using jellydator/validation
func (uc *CustomerUseCase) validateUpdateCustomerInput(input UpdateCustomerInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// UpdateCustomer updates an existing customer
func (uc *CustomerUseCase) UpdateCustomer(
	ctx context.Context,
	id uuid.UUID,
	input UpdateCustomerInput,
) (*domain.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := uc.validateUpdateCustomerInput(input); err != nil {
		return nil, err
	}

	customer, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Email = input.Email

	if err := uc.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer removes a customer
func (uc *CustomerUseCase) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return uc.customerRepo.Delete(ctx, id)
}

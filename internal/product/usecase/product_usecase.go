// Package usecase implements the product business logic and orchestrates product domain operations.
package usecase

import (
	"context"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/product/domain"
	appValidation "github.com/allisson/orders/internal/validation"
)

// CreateProductInput contains the input data for product creation
type CreateProductInput struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// UpdateProductInput contains the input data for product updates
type UpdateProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// UseCase defines the interface for product business logic operations
type UseCase interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductRepository interface defines product repository operations
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// ProductUseCase handles product-related business logic
type ProductUseCase struct {
	productRepo ProductRepository
}

// NewProductUseCase creates a new ProductUseCase
func NewProductUseCase(productRepo ProductRepository) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
	}
}

// validateCreateProductInput validates the creation input using jellydator/validation
func (uc *ProductUseCase) validateCreateProductInput(input CreateProductInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.SKU,
			validation.Required.Error("sku is required"),
			appValidation.NotBlank,
			validation.Length(1, 100).Error("sku must be between 1 and 100 characters"),
		),
		validation.Field(&input.Description,
			validation.Length(0, 1000).Error("description must be at most 1000 characters"),
		),
		validation.Field(&input.Price,
			validation.Required.Error("price is required"),
			validation.Min(0.01).Error("price must be greater than zero"),
			appValidation.DecimalPlaces{Max: 2},
		),
		validation.Field(&input.StockQuantity,
			validation.Min(0).Error("stock_quantity must be non-negative"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// validateUpdateProductInput validates the update input using jellydator/validation
func (uc *ProductUseCase) validateUpdateProductInput(input UpdateProductInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Description,
			validation.Length(0, 1000).Error("description must be at most 1000 characters"),
		),
		validation.Field(&input.Price,
			validation.Required.Error("price is required"),
			validation.Min(0.01).Error("price must be greater than zero"),
			appValidation.DecimalPlaces{Max: 2},
		),
		validation.Field(&input.StockQuantity,
			validation.Min(0).Error("stock_quantity must be non-negative"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateProduct creates a new product
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := uc.validateCreateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          strings.TrimSpace(input.Name),
		SKU:           strings.TrimSpace(strings.ToUpper(input.SKU)),
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

// GetProductBySKU retrieves a product by SKU
func (uc *ProductUseCase) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return uc.productRepo.GetBySKU(ctx, strings.TrimSpace(strings.ToUpper(sku)))
}

// ListProducts retrieves products with pagination
func (uc *ProductUseCase) ListProducts(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	return uc.productRepo.List(ctx, offset, limit)
}

// UpdateProduct updates an existing product's mutable fields. The SKU is
// immutable after creation.
func (uc *ProductUseCase) UpdateProduct(
	ctx context.Context,
	id uuid.UUID,
	input UpdateProductInput,
) (*domain.Product, error) {
	if err := uc.validateUpdateProductInput(input); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.StockQuantity = input.StockQuantity

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return uc.productRepo.Delete(ctx, id)
}

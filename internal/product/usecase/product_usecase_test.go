package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/product/domain"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func validCreateProductInput() CreateProductInput {
	return CreateProductInput{
		Name:          "Mechanical Keyboard",
		SKU:           "kbd-001",
		Description:   "87-key mechanical keyboard",
		Price:         149.90,
		StockQuantity: 25,
	}
}

func TestProductUseCase_CreateProduct_Success(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	input := validCreateProductInput()

	repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Mechanical Keyboard" &&
			p.SKU == "KBD-001" &&
			p.Price == 149.90 &&
			p.StockQuantity == 25
	})).Return(nil)

	product, err := uc.CreateProduct(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, product)
	assert.NotEqual(t, uuid.Nil, product.ID)
	// SKU is normalized to upper case
	assert.Equal(t, "KBD-001", product.SKU)
	repo.AssertExpectations(t)
}

func TestProductUseCase_CreateProduct_ValidationErrors(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(input *CreateProductInput)
	}{
		{"empty name", func(i *CreateProductInput) { i.Name = "" }},
		{"blank name", func(i *CreateProductInput) { i.Name = "   " }},
		{"empty sku", func(i *CreateProductInput) { i.SKU = "" }},
		{"zero price", func(i *CreateProductInput) { i.Price = 0 }},
		{"negative price", func(i *CreateProductInput) { i.Price = -5.00 }},
		{"price with three decimals", func(i *CreateProductInput) { i.Price = 10.999 }},
		{"negative stock", func(i *CreateProductInput) { i.StockQuantity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateProductInput()
			tt.mutate(&input)

			product, err := uc.CreateProduct(ctx, input)

			assert.Error(t, err)
			assert.Nil(t, product)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}

	repo.AssertNotCalled(t, "Create")
}

func TestProductUseCase_CreateProduct_DuplicateSKU(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	input := validCreateProductInput()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).
		Return(domain.ErrProductAlreadyExists)

	product, err := uc.CreateProduct(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestProductUseCase_GetProduct(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())
	expected := &domain.Product{ID: productID, Name: "Keyboard", SKU: "KBD-001"}

	repo.On("GetByID", ctx, productID).Return(expected, nil)

	product, err := uc.GetProduct(ctx, productID)

	require.NoError(t, err)
	assert.Equal(t, expected, product)
}

func TestProductUseCase_GetProductBySKU_NormalizesSKU(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	expected := &domain.Product{ID: uuid.Must(uuid.NewV7()), SKU: "KBD-001"}

	repo.On("GetBySKU", ctx, "KBD-001").Return(expected, nil)

	product, err := uc.GetProductBySKU(ctx, " kbd-001 ")

	require.NoError(t, err)
	assert.Equal(t, expected, product)
	repo.AssertExpectations(t)
}

func TestProductUseCase_ListProducts(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	expected := []*domain.Product{
		{ID: uuid.Must(uuid.NewV7())},
		{ID: uuid.Must(uuid.NewV7())},
	}

	repo.On("List", ctx, 0, 50).Return(expected, nil)

	products, err := uc.ListProducts(ctx, 0, 50)

	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestProductUseCase_UpdateProduct_Success(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())
	existing := &domain.Product{
		ID:            productID,
		Name:          "Old Name",
		SKU:           "KBD-001",
		Price:         99.90,
		StockQuantity: 5,
	}

	repo.On("GetByID", ctx, productID).Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == productID &&
			p.Name == "New Name" &&
			p.SKU == "KBD-001" &&
			p.Price == 129.90 &&
			p.StockQuantity == 10
	})).Return(nil)

	product, err := uc.UpdateProduct(ctx, productID, UpdateProductInput{
		Name:          "New Name",
		Description:   "updated",
		Price:         129.90,
		StockQuantity: 10,
	})

	require.NoError(t, err)
	// SKU stays untouched on update
	assert.Equal(t, "KBD-001", product.SKU)
	repo.AssertExpectations(t)
}

func TestProductUseCase_UpdateProduct_NotFound(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())

	repo.On("GetByID", ctx, productID).Return(nil, domain.ErrProductNotFound)

	product, err := uc.UpdateProduct(ctx, productID, UpdateProductInput{
		Name:          "New Name",
		Price:         129.90,
		StockQuantity: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	repo.AssertNotCalled(t, "Update")
}

func TestProductUseCase_UpdateProduct_ValidationError(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())

	product, err := uc.UpdateProduct(ctx, productID, UpdateProductInput{
		Name:  "",
		Price: 129.90,
	})

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	repo.AssertNotCalled(t, "GetByID")
}

func TestProductUseCase_DeleteProduct(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())

	repo.On("Delete", ctx, productID).Return(nil)

	err := uc.DeleteProduct(ctx, productID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProductUseCase_DeleteProduct_NotFound(t *testing.T) {
	repo := &MockProductRepository{}
	uc := NewProductUseCase(repo)

	ctx := context.Background()
	productID := uuid.Must(uuid.NewV7())

	repo.On("Delete", ctx, productID).Return(domain.ErrProductNotFound)

	err := uc.DeleteProduct(ctx, productID)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	outboxDomain "github.com/allisson/orders/internal/outbox/domain"
	productDomain "github.com/allisson/orders/internal/product/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	args := m.Called(ctx, customerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.OrderStatus,
) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*productDomain.Product), args.Error(1)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func validCreateOrderInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerID:  uuid.Must(uuid.NewV7()),
		ProductID:   uuid.Must(uuid.NewV7()),
		Quantity:    2,
		TotalAmount: 39.98,
	}
}

func testProduct(id uuid.UUID, stock int) *productDomain.Product {
	return &productDomain.Product{
		ID:            id,
		Name:          "Test Product",
		SKU:           "TEST-SKU",
		Price:         19.99,
		StockQuantity: stock,
	}
}

func TestOrderUseCase_CreateOrder_Success(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 10), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(true, nil)
	orderRepo.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.CustomerID == input.CustomerID &&
			o.ProductID == input.ProductID &&
			o.Quantity == input.Quantity &&
			o.Status == domain.OrderStatusPending
	})).Return(nil)
	outboxRepo.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
		return e.EventType == "order.created" &&
			e.AggregateType == "order" &&
			e.Status == outboxDomain.OutboxEventStatusPending
	})).Return(nil)

	order, err := uc.CreateOrder(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.False(t, order.CreatedAt.IsZero())
	assert.False(t, order.UpdatedAt.IsZero())
	txManager.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestOrderUseCase_CreateOrder_PayloadContents(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()
	input.TraceID = "trace-123"
	input.SpanID = "span-456"

	var captured *outboxDomain.OutboxEvent

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 10), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(true, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	outboxRepo.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
		captured = e
		return true
	})).Return(nil)

	order, err := uc.CreateOrder(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, order.ID, captured.AggregateID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
	assert.Equal(t, order.ID.String(), payload["order_id"])
	assert.Equal(t, input.CustomerID.String(), payload["customer_id"])
	assert.Equal(t, input.ProductID.String(), payload["product_id"])
	assert.Equal(t, float64(input.Quantity), payload["quantity"])
	assert.Equal(t, input.TotalAmount, payload["total_amount"])
	assert.Equal(t, order.CreatedAt.Format(time.RFC3339), payload["created_at"])
	assert.Equal(t, "trace-123", payload["trace_id"])
	assert.Equal(t, "span-456", payload["span_id"])
}

func TestOrderUseCase_CreateOrder_PayloadOmitsEmptyTrace(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()

	var captured *outboxDomain.OutboxEvent

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 10), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(true, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	outboxRepo.On("Create", ctx, mock.MatchedBy(func(e *outboxDomain.OutboxEvent) bool {
		captured = e
		return true
	})).Return(nil)

	_, err := uc.CreateOrder(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, captured)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(captured.Payload), &payload))
	assert.NotContains(t, payload, "trace_id")
	assert.NotContains(t, payload, "span_id")
}

func TestOrderUseCase_CreateOrder_ValidationErrors(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(input *CreateOrderInput)
	}{
		{"missing customer id", func(i *CreateOrderInput) { i.CustomerID = uuid.Nil }},
		{"missing product id", func(i *CreateOrderInput) { i.ProductID = uuid.Nil }},
		{"zero quantity", func(i *CreateOrderInput) { i.Quantity = 0 }},
		{"negative quantity", func(i *CreateOrderInput) { i.Quantity = -1 }},
		{"quantity above maximum", func(i *CreateOrderInput) { i.Quantity = 1001 }},
		{"zero total amount", func(i *CreateOrderInput) { i.TotalAmount = 0 }},
		{"negative total amount", func(i *CreateOrderInput) { i.TotalAmount = -10.50 }},
		{"total amount above maximum", func(i *CreateOrderInput) { i.TotalAmount = 100000.01 }},
		{"too many decimal places", func(i *CreateOrderInput) { i.TotalAmount = 19.999 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateOrderInput()
			tt.mutate(&input)

			order, err := uc.CreateOrder(ctx, input)

			assert.Error(t, err)
			assert.Nil(t, order)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}

	// No repository should be touched for invalid input
	productRepo.AssertNotCalled(t, "GetByID")
	txManager.AssertNotCalled(t, "WithTx")
}

func TestOrderUseCase_CreateOrder_ProductNotFound(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()

	productRepo.On("GetByID", ctx, input.ProductID).Return(nil, productDomain.ErrProductNotFound)

	order, err := uc.CreateOrder(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	txManager.AssertNotCalled(t, "WithTx")
}

func TestOrderUseCase_CreateOrder_InsufficientStock(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 1), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(false, nil)

	order, err := uc.CreateOrder(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, productDomain.ErrInsufficientStock))

	// The failed reservation aborts the transaction before any insert
	orderRepo.AssertNotCalled(t, "Create")
	outboxRepo.AssertNotCalled(t, "Create")
}

func TestOrderUseCase_CreateOrder_OrderInsertFailureAbortsTransaction(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()
	insertError := errors.New("insert failed")

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 10), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(true, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(insertError)

	order, err := uc.CreateOrder(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, order)
	outboxRepo.AssertNotCalled(t, "Create")
}

func TestOrderUseCase_CreateOrder_OutboxInsertFailureAbortsTransaction(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	input := validCreateOrderInput()
	outboxError := errors.New("outbox insert failed")

	productRepo.On("GetByID", ctx, input.ProductID).Return(testProduct(input.ProductID, 10), nil)
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	productRepo.On("ReserveStock", ctx, input.ProductID, input.Quantity).Return(true, nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	outboxRepo.On("Create", ctx, mock.AnythingOfType("*domain.OutboxEvent")).Return(outboxError)

	order, err := uc.CreateOrder(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.Contains(t, err.Error(), "outbox insert failed")
}

// fakeStockRepository serializes reservations against a counter the way the
// database conditional update does.
type fakeStockRepository struct {
	mu      sync.Mutex
	product *productDomain.Product
	stock   int
}

func (f *fakeStockRepository) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	return f.product, nil
}

func (f *fakeStockRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stock < quantity {
		return false, nil
	}
	f.stock -= quantity
	return true, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopOrderRepository struct{}

func (noopOrderRepository) Create(ctx context.Context, order *domain.Order) error { return nil }

func (noopOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (noopOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	return nil, nil
}

func (noopOrderRepository) ListByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	return nil, nil
}

func (noopOrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.OrderStatus,
) (bool, error) {
	return false, nil
}

type noopOutboxRepository struct{}

func (noopOutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	return nil
}

func TestOrderUseCase_CreateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	productID := uuid.Must(uuid.NewV7())
	stockRepo := &fakeStockRepository{
		product: testProduct(productID, 5),
		stock:   5,
	}

	uc := NewOrderUseCase(passthroughTxManager{}, noopOrderRepository{}, stockRepo, noopOutboxRepository{})

	ctx := context.Background()
	const workers = 20

	var wg sync.WaitGroup
	var successCount int32
	var successMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := CreateOrderInput{
				CustomerID:  uuid.Must(uuid.NewV7()),
				ProductID:   productID,
				Quantity:    1,
				TotalAmount: 19.99,
			}
			if _, err := uc.CreateOrder(ctx, input); err == nil {
				successMu.Lock()
				successCount++
				successMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), successCount)
	assert.Equal(t, 0, stockRepo.stock)
}

func TestOrderUseCase_GetOrder(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())
	expected := &domain.Order{ID: orderID, Status: domain.OrderStatusPending}

	orderRepo.On("GetByID", ctx, orderID).Return(expected, nil)

	order, err := uc.GetOrder(ctx, orderID)

	require.NoError(t, err)
	assert.Equal(t, expected, order)
	orderRepo.AssertExpectations(t)
}

func TestOrderUseCase_GetOrder_NotFound(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())

	orderRepo.On("GetByID", ctx, orderID).Return(nil, domain.ErrOrderNotFound)

	order, err := uc.GetOrder(ctx, orderID)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOrderUseCase_ListOrders(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	expected := []*domain.Order{
		{ID: uuid.Must(uuid.NewV7())},
		{ID: uuid.Must(uuid.NewV7())},
	}

	orderRepo.On("List", ctx, 0, 50).Return(expected, nil)

	orders, err := uc.ListOrders(ctx, 0, 50)

	require.NoError(t, err)
	assert.Len(t, orders, 2)
	orderRepo.AssertExpectations(t)
}

func TestOrderUseCase_ListOrdersByCustomer(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	customerID := uuid.Must(uuid.NewV7())
	expected := []*domain.Order{{ID: uuid.Must(uuid.NewV7()), CustomerID: customerID}}

	orderRepo.On("ListByCustomer", ctx, customerID, 0, 50).Return(expected, nil)

	orders, err := uc.ListOrdersByCustomer(ctx, customerID, 0, 50)

	require.NoError(t, err)
	assert.Len(t, orders, 1)
	orderRepo.AssertExpectations(t)
}

func TestOrderUseCase_UpdateOrderStatus_Success(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())

	orderRepo.On("UpdateStatus", ctx, orderID, domain.OrderStatusCompleted).Return(true, nil)

	err := uc.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCompleted)

	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestOrderUseCase_UpdateOrderStatus_InvalidStatus(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())

	err := uc.UpdateOrderStatus(ctx, orderID, domain.OrderStatus("BOGUS"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	orderRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestOrderUseCase_UpdateOrderStatus_AlreadyTerminalIsNoOp(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())
	settled := &domain.Order{ID: orderID, Status: domain.OrderStatusCompleted}

	// Sticky terminal status: the conditional update touches no rows
	orderRepo.On("UpdateStatus", ctx, orderID, domain.OrderStatusFailed).Return(false, nil)
	orderRepo.On("GetByID", ctx, orderID).Return(settled, nil)

	err := uc.UpdateOrderStatus(ctx, orderID, domain.OrderStatusFailed)

	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestOrderUseCase_UpdateOrderStatus_NotFound(t *testing.T) {
	txManager := &MockTxManager{}
	orderRepo := &MockOrderRepository{}
	productRepo := &MockProductRepository{}
	outboxRepo := &MockOutboxEventRepository{}

	uc := NewOrderUseCase(txManager, orderRepo, productRepo, outboxRepo)

	ctx := context.Background()
	orderID := uuid.Must(uuid.NewV7())

	orderRepo.On("UpdateStatus", ctx, orderID, domain.OrderStatusCompleted).Return(false, nil)
	orderRepo.On("GetByID", ctx, orderID).Return(nil, domain.ErrOrderNotFound)

	err := uc.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCompleted)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// Package usecase implements the order business logic, including the
// transactional commit path that reserves stock and records the outbox event
// atomically with the order itself.
package usecase

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/database"
	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	outboxDomain "github.com/allisson/orders/internal/outbox/domain"
	productDomain "github.com/allisson/orders/internal/product/domain"
	appValidation "github.com/allisson/orders/internal/validation"
)

const (
	maxOrderQuantity = 1000
	maxOrderAmount   = 100000.0

	orderAggregateType    = "order"
	orderCreatedEventType = "order.created"
)

// CreateOrderInput contains the input data for order creation. TraceID and
// SpanID are optional correlation ids propagated into the outbox payload.
type CreateOrderInput struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	TotalAmount float64   `json:"total_amount"`
	TraceID     string    `json:"-"`
	SpanID      string    `json:"-"`
}

// UseCase defines the interface for order business logic operations
type UseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// OrderRepository interface defines order repository operations
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (bool, error)
}

// ProductRepository defines the product operations the order flow needs
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error)
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

// OutboxEventRepository defines the outbox operations the order flow needs
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// OrderUseCase handles order-related business logic
type OrderUseCase struct {
	txManager   database.TxManager
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxEventRepository
}

// NewOrderUseCase creates a new OrderUseCase
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxEventRepository,
) *OrderUseCase {
	return &OrderUseCase{
		txManager:   txManager,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
	}
}

// validateCreateOrderInput validates the creation input using jellydator/validation.
// Bounds checks run before any database work so malformed requests are
// rejected without touching the pool.
func (uc *OrderUseCase) validateCreateOrderInput(input CreateOrderInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.CustomerID,
			appValidation.UUIDRequired,
		),
		validation.Field(&input.ProductID,
			appValidation.UUIDRequired,
		),
		validation.Field(&input.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(1).Error("quantity must be greater than zero"),
			validation.Max(maxOrderQuantity).Error("quantity must be at most 1000"),
		),
		validation.Field(&input.TotalAmount,
			validation.Required.Error("total_amount is required"),
			validation.Min(0.01).Error("total_amount must be greater than zero"),
			validation.Max(maxOrderAmount).Error("total_amount must be at most 100000"),
			appValidation.DecimalPlaces{Max: 2},
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateOrder commits an order: it reserves product stock, inserts the order,
// and records an order.created outbox event in a single transaction. The
// event reaches the broker later via the outbox dispatcher, never from here.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := uc.validateCreateOrderInput(input); err != nil {
		return nil, err
	}

	// Advisory existence check for a clean not-found error. The reservation
	// inside the transaction is the authoritative stock check.
	if _, err := uc.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	order := domain.NewOrder(input.CustomerID, input.ProductID, input.Quantity, input.TotalAmount)

	// Payload is serialized before the transaction to keep the lock-held
	// window free of work that cannot fail differently inside it.
	payload, err := uc.buildOrderCreatedPayload(order, input.TraceID, input.SpanID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal event payload")
	}

	outboxEvent := outboxDomain.NewOutboxEvent(order.ID, orderAggregateType, orderCreatedEventType, payload)

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		reserved, err := uc.productRepo.ReserveStock(ctx, order.ProductID, order.Quantity)
		if err != nil {
			return err
		}
		if !reserved {
			return productDomain.ErrInsufficientStock
		}

		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(ctx, outboxEvent); err != nil {
			return apperrors.Wrap(err, "failed to create outbox event")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// buildOrderCreatedPayload serializes the order.created event body. Trace and
// span ids are included only when present.
func (uc *OrderUseCase) buildOrderCreatedPayload(order *domain.Order, traceID, spanID string) (string, error) {
	payload := map[string]any{
		"order_id":     order.ID.String(),
		"customer_id":  order.CustomerID.String(),
		"product_id":   order.ProductID.String(),
		"quantity":     order.Quantity,
		"total_amount": order.TotalAmount,
		"created_at":   order.CreatedAt.Format(time.RFC3339),
	}
	if traceID != "" {
		payload["trace_id"] = traceID
	}
	if spanID != "" {
		payload["span_id"] = spanID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.orderRepo.GetByID(ctx, id)
}

// ListOrders retrieves orders with pagination
func (uc *OrderUseCase) ListOrders(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	return uc.orderRepo.List(ctx, offset, limit)
}

// ListOrdersByCustomer retrieves a customer's orders with pagination
func (uc *OrderUseCase) ListOrdersByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	return uc.orderRepo.ListByCustomer(ctx, customerID, offset, limit)
}

// UpdateOrderStatus transitions an order to a new status. The repository
// update skips terminal statuses, so duplicate or late feedback resolves to a
// successful no-op rather than an error. Unknown orders return
// ErrOrderNotFound so callers can treat them as definitive.
func (uc *OrderUseCase) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}

	changed, err := uc.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if changed {
		return nil
	}

	// Nothing changed: either the order does not exist or it already settled.
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return nil
	}

	// Same non-terminal status, idempotent no-op.
	return nil
}

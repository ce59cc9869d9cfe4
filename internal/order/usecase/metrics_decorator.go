package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/metrics"
	"github.com/allisson/orders/internal/order/domain"
)

// orderUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CreateOrder records metrics for order creation operations.
func (o *orderUseCaseWithMetrics) CreateOrder(
	ctx context.Context,
	input CreateOrderInput,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.CreateOrder(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "order", "order_create", status)
	o.metrics.RecordDuration(ctx, "order", "order_create", time.Since(start), status)

	return order, err
}

// GetOrder records metrics for order retrieval operations.
func (o *orderUseCaseWithMetrics) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.GetOrder(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "order", "order_get", status)
	o.metrics.RecordDuration(ctx, "order", "order_get", time.Since(start), status)

	return order, err
}

// ListOrders records metrics for order list operations.
func (o *orderUseCaseWithMetrics) ListOrders(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Order, error) {
	start := time.Now()
	orders, err := o.next.ListOrders(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "order", "order_list", status)
	o.metrics.RecordDuration(ctx, "order", "order_list", time.Since(start), status)

	return orders, err
}

// ListOrdersByCustomer records metrics for customer-scoped order list operations.
func (o *orderUseCaseWithMetrics) ListOrdersByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	start := time.Now()
	orders, err := o.next.ListOrdersByCustomer(ctx, customerID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "order", "order_list_by_customer", status)
	o.metrics.RecordDuration(ctx, "order", "order_list_by_customer", time.Since(start), status)

	return orders, err
}

// UpdateOrderStatus records metrics for order status update operations.
func (o *orderUseCaseWithMetrics) UpdateOrderStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.OrderStatus,
) error {
	start := time.Now()
	err := o.next.UpdateOrderStatus(ctx, id, status)

	result := "success"
	if err != nil {
		result = "error"
	}

	o.metrics.RecordOperation(ctx, "order", "order_status_update", result)
	o.metrics.RecordDuration(ctx, "order", "order_status_update", time.Since(start), result)

	return err
}

// Package dto provides data transfer objects for the order HTTP layer.
package dto

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

// ToCreateOrderInput converts a CreateOrderRequest DTO to a use case input.
// The trace and span ids come from request headers, not the body.
func ToCreateOrderInput(req CreateOrderRequest, traceID, spanID string) (usecase.CreateOrderInput, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return usecase.CreateOrderInput{}, fmt.Errorf("invalid customer_id format: must be a valid UUID")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return usecase.CreateOrderInput{}, fmt.Errorf("invalid product_id format: must be a valid UUID")
	}

	return usecase.CreateOrderInput{
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    req.Quantity,
		TotalAmount: req.TotalAmount,
		TraceID:     traceID,
		SpanID:      spanID,
	}, nil
}

// ToOrderResponse converts a domain Order model to an OrderResponse DTO
func ToOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// ToOrderListResponse converts domain Order models to an OrderListResponse DTO
func ToOrderListResponse(orders []*domain.Order) OrderListResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, ToOrderResponse(order))
	}
	return OrderListResponse{Orders: responses}
}

// Package http provides HTTP handlers for order operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/orders/internal/httputil"
	"github.com/allisson/orders/internal/order/http/dto"
	"github.com/allisson/orders/internal/order/usecase"
)

// Correlation headers propagated into the order.created outbox payload.
const (
	headerTraceID = "X-Trace-Id"
	headerSpanID  = "X-Span-Id"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderUseCase usecase.UseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderUseCase usecase.UseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

// CreateHandler creates a new order, reserving product stock and recording
// the order.created outbox event in the same transaction.
// POST /v1/orders - Returns 201 Created with the order in PENDING status.
func (h *OrderHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input, err := dto.ToCreateOrderInput(req, c.GetHeader(headerTraceID), c.GetHeader(headerSpanID))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	order, err := h.orderUseCase.CreateOrder(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// GetHandler retrieves an order by ID.
// GET /v1/orders/:id - Returns 200 OK with the order data.
func (h *OrderHandler) GetHandler(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid order ID format: must be a valid UUID"),
			h.logger)
		return
	}

	order, err := h.orderUseCase.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// ListHandler retrieves orders with pagination support. When a customer_id
// query parameter is present the listing is scoped to that customer.
// GET /v1/orders?offset=0&limit=50&customer_id= - Returns 200 OK.
func (h *OrderHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if customerIDParam := c.Query("customer_id"); customerIDParam != "" {
		customerID, err := uuid.Parse(customerIDParam)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid customer_id format: must be a valid UUID"),
				h.logger)
			return
		}

		orders, err := h.orderUseCase.ListOrdersByCustomer(c.Request.Context(), customerID, offset, limit)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.ToOrderListResponse(orders))
		return
	}

	orders, err := h.orderUseCase.ListOrders(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderListResponse(orders))
}

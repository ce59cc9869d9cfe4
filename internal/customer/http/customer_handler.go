// Package http provides HTTP handlers for customer operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/orders/internal/customer/http/dto"
	"github.com/allisson/orders/internal/customer/usecase"
	"github.com/allisson/orders/internal/httputil"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerUseCase usecase.UseCase
	logger          *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerUseCase usecase.UseCase, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerUseCase: customerUseCase,
		logger:          logger,
	}
}

// CreateHandler creates a new customer.
// POST /v1/customers - Returns 201 Created with the customer data.
func (h *CustomerHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateCustomerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	customer, err := h.customerUseCase.CreateCustomer(c.Request.Context(), dto.ToCreateCustomerInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// GetHandler retrieves a customer by ID.
// GET /v1/customers/:id - Returns 200 OK with the customer data.
func (h *CustomerHandler) GetHandler(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid customer ID format: must be a valid UUID"),
			h.logger)
		return
	}

	customer, err := h.customerUseCase.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// GetByEmailHandler retrieves a customer by email.
// GET /v1/customers/email/:email - Returns 200 OK with the customer data.
func (h *CustomerHandler) GetByEmailHandler(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("email is required"), h.logger)
		return
	}

	customer, err := h.customerUseCase.GetCustomerByEmail(c.Request.Context(), email)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// UpdateHandler updates an existing customer.
// PUT /v1/customers/:id - Returns 200 OK with updated customer data.
func (h *CustomerHandler) UpdateHandler(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid customer ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.UpdateCustomerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	customer, err := h.customerUseCase.UpdateCustomer(c.Request.Context(), customerID, dto.ToUpdateCustomerInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// DeleteHandler removes a customer.
// DELETE /v1/customers/:id - Returns 204 No Content.
func (h *CustomerHandler) DeleteHandler(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid customer ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.customerUseCase.DeleteCustomer(c.Request.Context(), customerID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler retrieves customers with pagination support.
// GET /v1/customers?offset=0&limit=50 - Returns 200 OK with paginated customer list.
func (h *CustomerHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	customers, err := h.customerUseCase.ListCustomers(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerListResponse(customers))
}

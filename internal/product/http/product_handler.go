// Package http provides HTTP handlers for product operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/orders/internal/httputil"
	"github.com/allisson/orders/internal/product/http/dto"
	"github.com/allisson/orders/internal/product/usecase"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productUseCase usecase.UseCase
	logger         *slog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productUseCase usecase.UseCase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
		logger:         logger,
	}
}

// CreateHandler creates a new product.
// POST /v1/products - Returns 201 Created with the product data.
func (h *ProductHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	product, err := h.productUseCase.CreateProduct(c.Request.Context(), dto.ToCreateProductInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// GetHandler retrieves a product by ID.
// GET /v1/products/:id - Returns 200 OK with the product data.
func (h *ProductHandler) GetHandler(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid product ID format: must be a valid UUID"),
			h.logger)
		return
	}

	product, err := h.productUseCase.GetProduct(c.Request.Context(), productID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// GetBySKUHandler retrieves a product by SKU.
// GET /v1/products/sku/:sku - Returns 200 OK with the product data.
func (h *ProductHandler) GetBySKUHandler(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("sku is required"), h.logger)
		return
	}

	product, err := h.productUseCase.GetProductBySKU(c.Request.Context(), sku)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// UpdateHandler updates an existing product.
// PUT /v1/products/:id - Returns 200 OK with updated product data.
func (h *ProductHandler) UpdateHandler(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid product ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.UpdateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	product, err := h.productUseCase.UpdateProduct(c.Request.Context(), productID, dto.ToUpdateProductInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// DeleteHandler removes a product.
// DELETE /v1/products/:id - Returns 204 No Content.
func (h *ProductHandler) DeleteHandler(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid product ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.productUseCase.DeleteProduct(c.Request.Context(), productID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler retrieves products with pagination support.
// GET /v1/products?offset=0&limit=50 - Returns 200 OK with paginated product list.
func (h *ProductHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	products, err := h.productUseCase.ListProducts(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductListResponse(products))
}

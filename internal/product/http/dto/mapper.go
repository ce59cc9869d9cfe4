// Package dto provides data transfer objects for the product HTTP layer.
package dto

import (
	"github.com/allisson/orders/internal/product/domain"
	"github.com/allisson/orders/internal/product/usecase"
)

// ToCreateProductInput converts a CreateProductRequest DTO to a use case input
func ToCreateProductInput(req CreateProductRequest) usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Name:          req.Name,
		SKU:           req.SKU,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}
}

// ToUpdateProductInput converts an UpdateProductRequest DTO to a use case input
func ToUpdateProductInput(req UpdateProductRequest) usecase.UpdateProductInput {
	return usecase.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}
}

// ToProductResponse converts a domain Product model to a ProductResponse DTO
func ToProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID,
		Name:          product.Name,
		SKU:           product.SKU,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ToProductListResponse converts domain Product models to a ProductListResponse DTO
func ToProductListResponse(products []*domain.Product) ProductListResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, ToProductResponse(product))
	}
	return ProductListResponse{Products: responses}
}

// Package repository provides data persistence implementations for product entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/product/domain"

	apperrors "github.com/allisson/orders/internal/errors"
)

// MySQLProductRepository handles product persistence for MySQL
type MySQLProductRepository struct {
	db *sql.DB
}

// NewMySQLProductRepository creates a new MySQLProductRepository
func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{
		db: db,
	}
}

// Create inserts a new product
func (r *MySQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO products (id, name, sku, description, price, stock_quantity, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	idBytes, err := product.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to create product")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, product.Name, product.SKU,
		product.Description, product.Price, product.StockQuantity)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrProductAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *MySQLProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products WHERE id = UUID_TO_BIN(?)`

	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&idBytes, &product.Name, &product.SKU, &product.Description,
		&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}

	if err := product.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}

	return &product, nil
}

// GetBySKU retrieves a product by SKU
func (r *MySQLProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products WHERE sku = ?`

	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, sku).Scan(
		&idBytes, &product.Name, &product.SKU, &product.Description,
		&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by sku")
	}

	if err := product.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to get product by sku")
	}

	return &product, nil
}

// List retrieves products with pagination
func (r *MySQLProductRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list products")
	}
	defer rows.Close() //nolint:errcheck

	var products []*domain.Product
	for rows.Next() {
		var product domain.Product
		var idBytes []byte

		err := rows.Scan(&idBytes, &product.Name, &product.SKU, &product.Description,
			&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan product")
		}

		if err := product.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan product")
		}

		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate products")
	}

	return products, nil
}

// Update updates a product's mutable fields
func (r *MySQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET name = ?, description = ?, price = ?, stock_quantity = ?, updated_at = NOW()
			  WHERE id = UUID_TO_BIN(?)`

	result, err := querier.ExecContext(ctx, query, product.Name, product.Description,
		product.Price, product.StockQuantity, product.ID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update product")
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *MySQLProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM products WHERE id = UUID_TO_BIN(?)`

	result, err := querier.ExecContext(ctx, query, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete product")
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// ReserveStock atomically decrements stock when enough is available.
// Returns whether the reservation succeeded.
func (r *MySQLProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity - ?, updated_at = NOW()
			  WHERE id = UUID_TO_BIN(?) AND stock_quantity >= ?`

	result, err := querier.ExecContext(ctx, query, quantity, id.String(), quantity)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to reserve stock")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to reserve stock")
	}

	return affected > 0, nil
}

// ReleaseStock returns previously reserved stock to the product.
func (r *MySQLProductRepository) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity + ?, updated_at = NOW()
			  WHERE id = UUID_TO_BIN(?)`

	result, err := querier.ExecContext(ctx, query, quantity, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to release stock")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to release stock")
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// isMySQLDuplicateEntry checks if the error is a MySQL duplicate entry violation
func isMySQLDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry")
}

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

// PostgreSQLProductRepository handles product persistence for PostgreSQL
type PostgreSQLProductRepository struct {
	db *sql.DB
}

// NewPostgreSQLProductRepository creates a new PostgreSQLProductRepository
func NewPostgreSQLProductRepository(db *sql.DB) *PostgreSQLProductRepository {
	return &PostgreSQLProductRepository{
		db: db,
	}
}

// Create inserts a new product
func (r *PostgreSQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO products (id, name, sku, description, price, stock_quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, product.ID, product.Name, product.SKU,
		product.Description, product.Price, product.StockQuantity)
	if err != nil {
		// Check for unique constraint violation (duplicate SKU)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrProductAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *PostgreSQLProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.SKU, &product.Description,
		&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}

	return &product, nil
}

// GetBySKU retrieves a product by SKU
func (r *PostgreSQLProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products WHERE sku = $1`

	err := querier.QueryRowContext(ctx, query, sku).Scan(
		&product.ID, &product.Name, &product.SKU, &product.Description,
		&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by sku")
	}

	return &product, nil
}

// List retrieves products with pagination
func (r *PostgreSQLProductRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, sku, description, price, stock_quantity, created_at, updated_at
			  FROM products ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list products")
	}
	defer rows.Close() //nolint:errcheck

	var products []*domain.Product
	for rows.Next() {
		var product domain.Product

		err := rows.Scan(&product.ID, &product.Name, &product.SKU, &product.Description,
			&product.Price, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
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
func (r *PostgreSQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET name = $1, description = $2, price = $3, stock_quantity = $4, updated_at = NOW()
			  WHERE id = $5`

	result, err := querier.ExecContext(ctx, query, product.Name, product.Description,
		product.Price, product.StockQuantity, product.ID)
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
func (r *PostgreSQLProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM products WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
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
// The quantity guard in the WHERE clause is the only stock check: two
// concurrent reservations for the last units race on the row lock and the
// loser sees zero affected rows. Returns whether the reservation succeeded.
func (r *PostgreSQLProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			  WHERE id = $1 AND stock_quantity >= $2`

	result, err := querier.ExecContext(ctx, query, id, quantity)
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
func (r *PostgreSQLProductRepository) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET stock_quantity = stock_quantity + $2, updated_at = NOW()
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, quantity)
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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

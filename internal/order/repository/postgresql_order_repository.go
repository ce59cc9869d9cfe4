// Package repository provides data persistence implementations for order entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/order/domain"

	apperrors "github.com/allisson/orders/internal/errors"
)

// PostgreSQLOrderRepository handles order persistence for PostgreSQL
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQLOrderRepository
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{
		db: db,
	}
}

// Create inserts a new order, joining the caller's transaction when one is
// present in the context.
func (r *PostgreSQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, order.ID, order.CustomerID, order.ProductID,
		order.Quantity, order.TotalAmount, order.Status)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *PostgreSQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CustomerID, &order.ProductID, &order.Quantity,
		&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order by id")
	}

	return &order, nil
}

// List retrieves orders with pagination, newest first
func (r *PostgreSQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	defer rows.Close() //nolint:errcheck

	return scanOrders(rows)
}

// ListByCustomer retrieves a customer's orders with pagination, newest first
func (r *PostgreSQLOrderRepository) ListByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders WHERE customer_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, customerID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders by customer")
	}
	defer rows.Close() //nolint:errcheck

	return scanOrders(rows)
}

// UpdateStatus transitions an order to a new status. The WHERE clause skips
// terminal statuses so the update is idempotent under duplicate delivery and
// late feedback never overrides a settled order. Returns whether a row changed.
func (r *PostgreSQLOrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.OrderStatus,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE orders
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status NOT IN ($3, $4, $5)`

	result, err := querier.ExecContext(ctx, query, status, id,
		domain.OrderStatusCompleted, domain.OrderStatusFailed, domain.OrderStatusCancelled)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to update order status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to update order status")
	}

	return affected > 0, nil
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order

		err := rows.Scan(&order.ID, &order.CustomerID, &order.ProductID, &order.Quantity,
			&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order")
		}

		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate orders")
	}

	return orders, nil
}

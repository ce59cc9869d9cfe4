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

// MySQLOrderRepository handles order persistence for MySQL
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQLOrderRepository
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		db: db,
	}
}

// Create inserts a new order, joining the caller's transaction when one is
// present in the context.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO orders (id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := order.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	customerIDBytes, err := order.CustomerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	productIDBytes, err := order.ProductID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, customerIDBytes, productIDBytes,
		order.Quantity, order.TotalAmount, order.Status)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *MySQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders WHERE id = UUID_TO_BIN(?)`

	var idBytes, customerIDBytes, productIDBytes []byte
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&idBytes, &customerIDBytes, &productIDBytes, &order.Quantity,
		&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order by id")
	}

	if err := scanOrderIDs(&order, idBytes, customerIDBytes, productIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to get order by id")
	}

	return &order, nil
}

// List retrieves orders with pagination, newest first
func (r *MySQLOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	defer rows.Close() //nolint:errcheck

	return scanMySQLOrders(rows)
}

// ListByCustomer retrieves a customer's orders with pagination, newest first
func (r *MySQLOrderRepository) ListByCustomer(
	ctx context.Context,
	customerID uuid.UUID,
	offset, limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at
			  FROM orders WHERE customer_id = UUID_TO_BIN(?) ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, customerID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders by customer")
	}
	defer rows.Close() //nolint:errcheck

	return scanMySQLOrders(rows)
}

// UpdateStatus transitions an order to a new status, skipping terminal
// statuses so late feedback never overrides a settled order. Returns whether
// a row changed.
func (r *MySQLOrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.OrderStatus,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE orders
			  SET status = ?, updated_at = NOW()
			  WHERE id = UUID_TO_BIN(?) AND status NOT IN (?, ?, ?)`

	result, err := querier.ExecContext(ctx, query, status, id.String(),
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

func scanOrderIDs(order *domain.Order, idBytes, customerIDBytes, productIDBytes []byte) error {
	if err := order.ID.UnmarshalBinary(idBytes); err != nil {
		return err
	}
	if err := order.CustomerID.UnmarshalBinary(customerIDBytes); err != nil {
		return err
	}
	return order.ProductID.UnmarshalBinary(productIDBytes)
}

func scanMySQLOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		var idBytes, customerIDBytes, productIDBytes []byte

		err := rows.Scan(&idBytes, &customerIDBytes, &productIDBytes, &order.Quantity,
			&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order")
		}

		if err := scanOrderIDs(&order, idBytes, customerIDBytes, productIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan order")
		}

		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate orders")
	}

	return orders, nil
}

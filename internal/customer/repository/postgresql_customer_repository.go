// Package repository provides data persistence implementations for customer entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/customer/domain"
	"github.com/allisson/orders/internal/database"

	apperrors "github.com/allisson/orders/internal/errors"
)

// PostgreSQLCustomerRepository handles customer persistence for PostgreSQL
type PostgreSQLCustomerRepository struct {
	db *sql.DB
}

// NewPostgreSQLCustomerRepository creates a new PostgreSQLCustomerRepository
func NewPostgreSQLCustomerRepository(db *sql.DB) *PostgreSQLCustomerRepository {
	return &PostgreSQLCustomerRepository{
		db: db,
	}
}

// Create inserts a new customer
func (r *PostgreSQLCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO customers (id, name, email, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, customer.ID, customer.Name, customer.Email)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrCustomerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create customer")
	}
	return nil
}

// GetByID retrieves a customer by ID
func (r *PostgreSQLCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer by id")
	}

	return &customer, nil
}

// GetByEmail retrieves a customer by email
func (r *PostgreSQLCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var customer domain.Customer
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers WHERE email = $1`

	err := querier.QueryRowContext(ctx, query, email).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer by email")
	}

	return &customer, nil
}

// Update updates a customer's mutable fields
func (r *PostgreSQLCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE customers
			  SET name = $1, email = $2, updated_at = NOW()
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, customer.Name, customer.Email, customer.ID)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrCustomerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update customer")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update customer")
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// Delete removes a customer
func (r *PostgreSQLCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM customers WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete customer")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete customer")
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// List retrieves customers with pagination
func (r *PostgreSQLCustomerRepository) List(ctx context.Context, offset, limit int) ([]*domain.Customer, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list customers")
	}
	defer rows.Close() //nolint:errcheck

	var customers []*domain.Customer
	for rows.Next() {
		var customer domain.Customer

		err := rows.Scan(&customer.ID, &customer.Name, &customer.Email,
			&customer.CreatedAt, &customer.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan customer")
		}

		customers = append(customers, &customer)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate customers")
	}

	return customers, nil
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

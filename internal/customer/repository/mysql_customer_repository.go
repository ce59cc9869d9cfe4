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

// MySQLCustomerRepository handles customer persistence for MySQL
type MySQLCustomerRepository struct {
	db *sql.DB
}

// NewMySQLCustomerRepository creates a new MySQLCustomerRepository
func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{
		db: db,
	}
}

// Create inserts a new customer
func (r *MySQLCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO customers (id, name, email, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	idBytes, err := customer.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to create customer")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, customer.Name, customer.Email)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return domain.ErrCustomerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create customer")
	}
	return nil
}

// GetByID retrieves a customer by ID
func (r *MySQLCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers WHERE id = UUID_TO_BIN(?)`

	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&idBytes, &customer.Name, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer by id")
	}

	if err := customer.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to get customer by id")
	}

	return &customer, nil
}

// GetByEmail retrieves a customer by email
func (r *MySQLCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var customer domain.Customer
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers WHERE email = ?`

	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, email).Scan(
		&idBytes, &customer.Name, &customer.Email, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer by email")
	}

	if err := customer.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to get customer by email")
	}

	return &customer, nil
}

// Update updates a customer's mutable fields
func (r *MySQLCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE customers
			  SET name = ?, email = ?, updated_at = NOW()
			  WHERE id = UUID_TO_BIN(?)`

	result, err := querier.ExecContext(ctx, query, customer.Name, customer.Email, customer.ID.String())
	if err != nil {
		if isMySQLDuplicateEntry(err) {
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
func (r *MySQLCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM customers WHERE id = UUID_TO_BIN(?)`

	result, err := querier.ExecContext(ctx, query, id.String())
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
func (r *MySQLCustomerRepository) List(ctx context.Context, offset, limit int) ([]*domain.Customer, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, created_at, updated_at
			  FROM customers ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list customers")
	}
	defer rows.Close() //nolint:errcheck

	var customers []*domain.Customer
	for rows.Next() {
		var customer domain.Customer
		var idBytes []byte

		err := rows.Scan(&idBytes, &customer.Name, &customer.Email,
			&customer.CreatedAt, &customer.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan customer")
		}

		if err := customer.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan customer")
		}

		customers = append(customers, &customer)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate customers")
	}

	return customers, nil
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

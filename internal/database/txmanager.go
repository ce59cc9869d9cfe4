// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/allisson/orders/internal/errors"
)

const (
	// beginTxAttempts is the retry budget for acquiring a transaction when the
	// connection pool is exhausted. After the budget is spent, acquisition
	// fails loudly instead of blocking indefinitely.
	beginTxAttempts = 3

	// beginTxBaseDelay is the initial backoff delay, doubled on each attempt.
	beginTxBaseDelay = 100 * time.Millisecond
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// Querier represents a database query executor (either *sql.DB or *sql.Tx).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages database transactions.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// sqlTxManager implements TxManager for SQL databases.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx executes the function within a database transaction.
// The transaction is stored in the context so repositories join it via GetTx.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.beginTx(ctx)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// beginTx starts a transaction with bounded exponential-backoff retry for
// transient acquisition failures (pool exhaustion under load).
func (m *sqlTxManager) beginTx(ctx context.Context) (*sql.Tx, error) {
	var lastErr error
	delay := beginTxBaseDelay

	for attempt := 0; attempt < beginTxAttempts; attempt++ {
		tx, err := m.db.BeginTx(ctx, nil)
		if err == nil {
			return tx, nil
		}
		lastErr = err

		// Context errors are definitive, retrying cannot help.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < beginTxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, apperrors.Wrap(apperrors.ErrUnavailable, lastErr.Error())
}

// GetTx retrieves a transaction from context, or returns the DB connection.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

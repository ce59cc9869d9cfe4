// Package repository provides data persistence implementations for outbox events.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/outbox/domain"
)

// MySQLOutboxEventRepository handles outbox event persistence for MySQL
type MySQLOutboxEventRepository struct {
	db *sql.DB
}

// NewMySQLOutboxEventRepository creates a new MySQLOutboxEventRepository
func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{
		db: db,
	}
}

// Create inserts a new outbox event, joining the caller's transaction when
// one is present in the context.
func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, status,
			  retry_count, max_retries, processed_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := event.ID.MarshalBinary()
	if err != nil {
		return err
	}
	aggregateIDBytes, err := event.AggregateID.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, idBytes, aggregateIDBytes, event.AggregateType,
		event.EventType, event.Payload, event.Status, event.RetryCount, event.MaxRetries, event.ProcessedAt)

	return err
}

// GetPendingEvents retrieves pending events in FIFO order with limit
func (r *MySQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, aggregate_id, aggregate_type, event_type, payload, status,
			  retry_count, max_retries, processed_at, created_at
			  FROM outbox_events
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		var idBytes, aggregateIDBytes []byte

		err := rows.Scan(&idBytes, &aggregateIDBytes, &event.AggregateType, &event.EventType,
			&event.Payload, &event.Status, &event.RetryCount, &event.MaxRetries,
			&event.ProcessedAt, &event.CreatedAt)
		if err != nil {
			return nil, err
		}

		// Convert bytes back to UUIDs
		if err := event.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}
		if err := event.AggregateID.UnmarshalBinary(aggregateIDBytes); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// MarkProcessed transitions a pending event to PROCESSED. The status guard
// makes it idempotent. Returns whether a row was changed.
func (r *MySQLOutboxEventRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_events
			  SET status = ?, processed_at = NOW()
			  WHERE id = UUID_TO_BIN(?) AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		domain.OutboxEventStatusProcessed, id, domain.OutboxEventStatusPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// IncrementRetry records a failed dispatch attempt, transitioning the event to
// FAILED in the same statement once the retry budget is spent.
func (r *MySQLOutboxEventRepository) IncrementRetry(ctx context.Context, id string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_events
			  SET retry_count = retry_count + 1,
			      status = CASE WHEN retry_count + 1 >= max_retries THEN ? ELSE status END
			  WHERE id = UUID_TO_BIN(?) AND status = ?`

	result, err := querier.ExecContext(ctx, query,
		domain.OutboxEventStatusFailed, id, domain.OutboxEventStatusPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Package repository provides data persistence implementations for outbox events.
package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/outbox/domain"
)

// PostgreSQLOutboxEventRepository handles outbox event persistence for PostgreSQL
type PostgreSQLOutboxEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLOutboxEventRepository creates a new PostgreSQLOutboxEventRepository
func NewPostgreSQLOutboxEventRepository(db *sql.DB) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{
		db: db,
	}
}

// Create inserts a new outbox event. It joins the caller's transaction when
// one is present in the context, which is how the event commits atomically
// with the aggregate change it describes.
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, status,
			  retry_count, max_retries, processed_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

	_, err := querier.ExecContext(ctx, query, event.ID, event.AggregateID, event.AggregateType,
		event.EventType, event.Payload, event.Status, event.RetryCount, event.MaxRetries, event.ProcessedAt)

	return err
}

// GetPendingEvents retrieves pending events in FIFO order with limit.
// FOR UPDATE SKIP LOCKED lets concurrent dispatchers claim disjoint batches.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, aggregate_id, aggregate_type, event_type, payload, status,
			  retry_count, max_retries, processed_at, created_at
			  FROM outbox_events
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent

		err := rows.Scan(&event.ID, &event.AggregateID, &event.AggregateType, &event.EventType,
			&event.Payload, &event.Status, &event.RetryCount, &event.MaxRetries,
			&event.ProcessedAt, &event.CreatedAt)
		if err != nil {
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
// makes it idempotent: an event already processed or failed is left alone.
// Returns whether a row was changed.
func (r *PostgreSQLOutboxEventRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_events
			  SET status = $1, processed_at = NOW()
			  WHERE id = $2 AND status = $3`

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

// IncrementRetry records a failed dispatch attempt. The retry increment and
// the transition to FAILED on exhaustion happen in a single conditional update
// so there is no window where the count and status disagree.
func (r *PostgreSQLOutboxEventRepository) IncrementRetry(ctx context.Context, id string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_events
			  SET retry_count = retry_count + 1,
			      status = CASE WHEN retry_count + 1 >= max_retries THEN $1 ELSE status END
			  WHERE id = $2 AND status = $3`

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

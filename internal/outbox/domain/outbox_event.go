// Package domain defines the core outbox domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "PENDING"
	OutboxEventStatusProcessed OutboxEventStatus = "PROCESSED"
	OutboxEventStatusFailed    OutboxEventStatus = "FAILED"
)

// DefaultMaxRetries is the dispatch retry cap applied to new events. An event
// that fails this many publish attempts becomes permanently FAILED.
const DefaultMaxRetries = 3

// OutboxEvent represents an event in the transactional outbox pattern.
// It is created in the same transaction as the aggregate change it describes
// and mutated only by the dispatcher via MarkProcessed/IncrementRetry.
type OutboxEvent struct {
	ID            uuid.UUID
	AggregateID   uuid.UUID
	AggregateType string
	EventType     string
	Payload       string
	Status        OutboxEventStatus
	RetryCount    int
	MaxRetries    int
	ProcessedAt   *time.Time
	CreatedAt     time.Time
}

// NewOutboxEvent creates a pending event for the given aggregate with the
// payload already serialized. Serializing before the enclosing transaction
// keeps the lock-held window small.
func NewOutboxEvent(aggregateID uuid.UUID, aggregateType, eventType, payload string) *OutboxEvent {
	return &OutboxEvent{
		ID:            uuid.Must(uuid.NewV7()),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		Status:        OutboxEventStatusPending,
		RetryCount:    0,
		MaxRetries:    DefaultMaxRetries,
	}
}

// MarkProcessed transitions the event to PROCESSED and stamps the processing time.
func (e *OutboxEvent) MarkProcessed() {
	now := time.Now().UTC()
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
}

// IncrementRetry counts a failed dispatch attempt. When the retry count
// reaches MaxRetries the event becomes permanently FAILED and is excluded
// from further dispatch.
func (e *OutboxEvent) IncrementRetry() {
	e.RetryCount++
	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxEventStatusFailed
	}
}

// IsExhausted reports whether the event has spent its retry budget.
func (e *OutboxEvent) IsExhausted() bool {
	return e.RetryCount >= e.MaxRetries
}

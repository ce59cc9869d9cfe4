// Package usecase implements the outbox dispatch loop that relays committed
// events to the message broker.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/outbox/domain"
)

// Config holds outbox dispatcher configuration
type Config struct {
	Interval  time.Duration
	BatchSize int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id string) (bool, error)
	IncrementRetry(ctx context.Context, id string) (bool, error)
}

// EventPublisher delivers an event to the message broker. It reports success
// as a boolean so the dispatcher treats every failure mode the same way:
// leave the event pending and spend one retry.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) bool
}

// UseCase defines the interface for the outbox dispatcher
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase polls the outbox table and publishes pending events.
// Delivery is at-least-once: the broker may receive an event whose
// MarkProcessed update later rolls back, so consumers must be idempotent.
type OutboxUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxEventRepository
	publisher  EventPublisher
	logger     *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Start runs the dispatch loop until the context is canceled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox dispatcher",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox dispatcher")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process events", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEvents claims a batch of pending events and publishes each one.
// The batch runs in a transaction so the row locks from FOR UPDATE SKIP LOCKED
// hold until the bookkeeping updates commit. One event failing to publish does
// not stop the rest of the batch.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Info("dispatching events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if uc.publisher.Publish(ctx, event) {
				if _, err := uc.outboxRepo.MarkProcessed(ctx, event.ID.String()); err != nil {
					return err
				}
				continue
			}

			if uc.logger != nil {
				uc.logger.Error("failed to publish event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Int("retry_count", event.RetryCount+1),
					slog.Int("max_retries", event.MaxRetries),
				)
			}

			if _, err := uc.outboxRepo.IncrementRetry(ctx, event.ID.String()); err != nil {
				return err
			}
		}

		return nil
	})
}

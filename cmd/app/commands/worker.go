package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/orders/internal/app"
	"github.com/allisson/orders/internal/config"
)

// RunWorker starts the outbox dispatcher worker with graceful shutdown support.
// The worker polls the outbox table on a fixed interval and publishes pending
// events to the message broker. Blocks until receiving SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting outbox worker",
		slog.String("version", version),
		slog.Duration("interval", cfg.WorkerInterval),
		slog.Int("batch_size", cfg.WorkerBatchSize),
	)

	defer closeContainer(container, logger)

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox use case: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := outboxUseCase.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker error: %w", err)
	}

	logger.Info("outbox worker stopped")
	return nil
}

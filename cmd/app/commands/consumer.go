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

// RunConsumer starts the inventory feedback consumer with graceful shutdown
// support. The consumer binds queues to the broker exchange and settles order
// statuses based on inventory reservation outcomes. Blocks until receiving
// SIGINT/SIGTERM or a fatal consumer error.
func RunConsumer(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting inventory feedback consumer",
		slog.String("version", version),
		slog.String("exchange", cfg.RabbitMQExchange),
		slog.Int("prefetch", cfg.ConsumerPrefetch),
	)

	defer closeContainer(container, logger)

	consumer, err := container.Consumer()
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer error: %w", err)
	}

	logger.Info("inventory feedback consumer stopped")
	return nil
}

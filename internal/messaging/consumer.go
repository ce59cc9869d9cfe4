package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/orders/internal/errors"
	orderDomain "github.com/allisson/orders/internal/order/domain"
)

// OrderStatusUpdater settles orders from inventory feedback.
type OrderStatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status orderDomain.OrderStatus) error
}

// feed binds a queue to a routing key and maps its inventory status to the
// order status it settles.
type feed struct {
	queue        string
	routingKey   string
	status       string
	targetStatus orderDomain.OrderStatus
}

var feeds = []feed{
	{
		queue:        "inventory.reserved.orders",
		routingKey:   "inventory.reserved",
		status:       "reserved",
		targetStatus: orderDomain.OrderStatusCompleted,
	},
	{
		queue:        "inventory.rejected.orders",
		routingKey:   "inventory.rejected",
		status:       "rejected",
		targetStatus: orderDomain.OrderStatusFailed,
	},
}

// ConsumerConfig holds inventory feedback consumer configuration
type ConsumerConfig struct {
	Exchange string
	Prefetch int
}

// Consumer receives inventory feedback events and settles the matching
// orders. Delivery is at-least-once, so everything it does is idempotent:
// malformed or mismatched messages are dropped with an ack, settled orders
// absorb duplicates, and only infrastructure errors requeue.
type Consumer struct {
	config  ConsumerConfig
	conn    *Connection
	updater OrderStatusUpdater
	logger  *slog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(
	config ConsumerConfig,
	conn *Connection,
	updater OrderStatusUpdater,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		config:  config,
		conn:    conn,
		updater: updater,
		logger:  logger,
	}
}

// Start declares the broker topology and consumes both feedback feeds until
// the context is canceled. In-flight messages finish handling before return.
func (c *Consumer) Start(ctx context.Context) error {
	channel, err := c.conn.Channel()
	if err != nil {
		return err
	}

	err = channel.ExchangeDeclare(
		c.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to declare exchange")
	}

	// Bounded prefetch keeps a burst of feedback from flooding the handler.
	if err := channel.Qos(c.config.Prefetch, 0, false); err != nil {
		return apperrors.Wrap(err, "failed to set qos")
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, f := range feeds {
		queue, err := channel.QueueDeclare(
			f.queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to declare queue")
		}

		err = channel.QueueBind(queue.Name, f.routingKey, c.config.Exchange, false, nil)
		if err != nil {
			return apperrors.Wrap(err, "failed to bind queue")
		}

		deliveries, err := channel.Consume(
			queue.Name,
			"",    // consumer
			false, // auto-ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to register consumer")
		}

		if c.logger != nil {
			c.logger.Info("consuming inventory feedback",
				slog.String("queue", f.queue),
				slog.String("routing_key", f.routingKey),
			)
		}

		g.Go(func() error {
			return c.consumeFeed(ctx, f, deliveries)
		})
	}

	return g.Wait()
}

func (c *Consumer) consumeFeed(ctx context.Context, f feed, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return apperrors.Wrap(apperrors.ErrUnavailable, "delivery channel closed")
			}
			c.handleDelivery(ctx, f, msg)
		}
	}
}

// inventoryFeedback is the wire shape of feedback messages. Producers are
// split between snake_case and camelCase, so both spellings are accepted.
type inventoryFeedback struct {
	OrderID      string `json:"order_id"`
	OrderIDCamel string `json:"orderId"`
	Status       string `json:"status"`
}

func (f inventoryFeedback) orderID() string {
	if f.OrderID != "" {
		return f.OrderID
	}
	return f.OrderIDCamel
}

// handleDelivery settles a single feedback message. Messages that can never
// succeed (malformed JSON, missing or invalid order id, status not matching
// the feed, unknown order) are acked and dropped; the settle update is
// idempotent so duplicates also ack. Only infrastructure errors nack with
// requeue.
func (c *Consumer) handleDelivery(ctx context.Context, f feed, msg amqp.Delivery) {
	var feedback inventoryFeedback
	if err := json.Unmarshal(msg.Body, &feedback); err != nil {
		c.drop(msg, "malformed feedback payload", slog.Any("error", err))
		return
	}

	rawOrderID := feedback.orderID()
	if rawOrderID == "" {
		c.drop(msg, "feedback missing order id", slog.String("message_id", msg.MessageId))
		return
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		c.drop(msg, "feedback order id is not a valid uuid", slog.String("order_id", rawOrderID))
		return
	}

	if feedback.Status != f.status {
		c.drop(msg, "feedback status does not match feed",
			slog.String("order_id", rawOrderID),
			slog.String("status", feedback.Status),
			slog.String("expected", f.status),
		)
		return
	}

	err = c.updater.UpdateOrderStatus(ctx, orderID, f.targetStatus)
	switch {
	case err == nil:
		if c.logger != nil {
			c.logger.Info("order settled from inventory feedback",
				slog.String("order_id", orderID.String()),
				slog.String("status", string(f.targetStatus)),
			)
		}
		c.ack(msg)
	case apperrors.Is(err, apperrors.ErrNotFound), apperrors.Is(err, apperrors.ErrInvalidInput):
		// Definitive failures, requeueing cannot help.
		c.drop(msg, "feedback for unknown or invalid order",
			slog.String("order_id", orderID.String()),
			slog.Any("error", err),
		)
	default:
		if c.logger != nil {
			c.logger.Error("failed to settle order, requeueing",
				slog.String("order_id", orderID.String()),
				slog.Any("error", err),
			)
		}
		if nackErr := msg.Nack(false, true); nackErr != nil && c.logger != nil {
			c.logger.Error("failed to nack message", slog.Any("error", nackErr))
		}
	}
}

func (c *Consumer) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil && c.logger != nil {
		c.logger.Error("failed to ack message", slog.Any("error", err))
	}
}

func (c *Consumer) drop(msg amqp.Delivery, reason string, attrs ...slog.Attr) {
	if c.logger != nil {
		args := make([]any, 0, len(attrs))
		for _, attr := range attrs {
			args = append(args, attr)
		}
		c.logger.Warn(reason, args...)
	}
	c.ack(msg)
}

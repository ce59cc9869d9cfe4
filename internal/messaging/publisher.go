package messaging

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	outboxDomain "github.com/allisson/orders/internal/outbox/domain"
)

// Publisher delivers outbox events to the topic exchange.
type Publisher struct {
	conn     *Connection
	exchange string
	logger   *slog.Logger
}

// NewPublisher creates a new Publisher for the given exchange.
func NewPublisher(conn *Connection, exchange string, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:     conn,
		exchange: exchange,
		logger:   logger,
	}
}

// Publish sends the event to the exchange with the event type as routing key.
// Messages are persistent, carry the event id as message id, and expose
// event_type, aggregate_id and aggregate_type as headers for downstream
// routing without payload inspection. Returns false on any failure so the
// dispatcher leaves the event pending and spends a retry.
func (p *Publisher) Publish(ctx context.Context, event *outboxDomain.OutboxEvent) bool {
	channel, err := p.conn.Channel()
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to acquire channel",
				slog.String("event_id", event.ID.String()),
				slog.Any("error", err),
			)
		}
		return false
	}

	err = channel.PublishWithContext(
		ctx,
		p.exchange,
		event.EventType,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(event.Payload),
			Timestamp:    time.Now(),
			MessageId:    event.ID.String(),
			Headers: amqp.Table{
				"event_type":     event.EventType,
				"aggregate_id":   event.AggregateID.String(),
				"aggregate_type": event.AggregateType,
			},
		},
	)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to publish event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("error", err),
			)
		}
		return false
	}

	return true
}

// Package messaging provides RabbitMQ connectivity: the outbox event
// publisher and the inventory feedback consumer.
package messaging

import (
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/allisson/orders/internal/errors"
)

// Connection manages a RabbitMQ connection and a single channel on top of it.
// Both are established lazily and re-established when the broker closes them,
// so callers always get a usable channel or an error.
type Connection struct {
	url    string
	logger *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewConnection creates a new Connection. No dialing happens until the first
// Channel call.
func NewConnection(url string, logger *slog.Logger) *Connection {
	return &Connection{
		url:    url,
		logger: logger,
	}
}

// Channel returns an open channel, dialing or redialing the broker as needed.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
		}
		c.conn = conn

		if c.logger != nil {
			c.logger.Info("connected to rabbitmq")
		}
	}

	channel, err := c.conn.Channel()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	c.channel = channel

	return c.channel, nil
}

// Close closes the channel and the underlying connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	c.channel = nil

	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.conn = nil

	return firstErr
}

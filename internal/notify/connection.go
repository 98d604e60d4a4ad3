package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/critiquest/critiquest/internal/logger"
)

// Channel is the subset of *amqp.Channel the notifier publishes through
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection owns a RabbitMQ connection and the channel notifications go out on
type Connection struct {
	url      string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	mu       sync.RWMutex
}

// Dial connects to RabbitMQ and declares the notification exchange
func Dial(ctx context.Context, amqpURL, exchange string) (*Connection, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		ExchangeKind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.FromContext(ctx).Info(LogMsgConnected, "host", redactURL(amqpURL), "exchange", exchange)
	return &Connection{url: amqpURL, exchange: exchange, conn: conn, channel: ch}, nil
}

// PublishWithContext publishes on the current channel
func (c *Connection) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.RLock()
	ch := c.channel
	c.mu.RUnlock()
	if ch == nil {
		return amqp.ErrClosed
	}
	return ch.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Exchange returns the declared exchange name
func (c *Connection) Exchange() string {
	return c.exchange
}

// Channel returns the underlying channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// IsConnected reports whether the connection is open
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// redactURL drops credentials before logging
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Host
}

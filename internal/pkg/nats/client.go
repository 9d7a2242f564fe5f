package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/opencollective/ledger/internal/pkg/logger"
)

// JetStreamMessageHandler processes one message. A returned error naks the message.
type JetStreamMessageHandler func(msg jetstream.Msg) error

// Client wraps a NATS connection and its JetStream context
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream

	mu        sync.Mutex
	consumers []jetstream.ConsumeContext
}

// NewClient connects to NATS and initializes JetStream
func NewClient(url string) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.Name("opencollective-ledger"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logger.Err(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", logger.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS server: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Client{conn: conn, js: js}, nil
}

// GetConn returns the underlying connection
func (c *Client) GetConn() *nats.Conn {
	return c.conn
}

// GetJetStream returns the JetStream context
func (c *Client) GetJetStream() jetstream.JetStream {
	return c.js
}

// IsConnected reports whether the connection is up
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// EnsureStreams creates or updates the given streams
func (c *Client) EnsureStreams(ctx context.Context, configs ...StreamConfig) error {
	for _, cfg := range configs {
		if _, err := c.js.CreateOrUpdateStream(ctx, cfg.toJetStream()); err != nil {
			return fmt.Errorf("failed to ensure stream %s: %w", cfg.Name, err)
		}
		logger.Info("JetStream stream ready",
			logger.String("stream", cfg.Name),
			logger.Strings("subjects", cfg.Subjects))
	}
	return nil
}

// PublishJSON marshals v and publishes it to subject through JetStream
func (c *Client) PublishJSON(ctx context.Context, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := c.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}
	return nil
}

// Consume creates or updates a durable consumer and processes its messages with handler.
// Messages are acked on success and nak'ed on error.
func (c *Client) Consume(ctx context.Context, cfg ConsumerConfig, handler JetStreamMessageHandler) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, cfg.toJetStream())
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", cfg.ConsumerName, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(msg); err != nil {
			logger.Error("Error processing JetStream message",
				logger.String("subject", msg.Subject()),
				logger.String("consumer", cfg.ConsumerName),
				logger.Err(err))
			if nakErr := msg.Nak(); nakErr != nil {
				logger.Error("Failed to NAK message", logger.Err(nakErr))
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			logger.Error("Failed to ACK message", logger.Err(ackErr))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", cfg.ConsumerName, err)
	}

	c.mu.Lock()
	c.consumers = append(c.consumers, consumeCtx)
	c.mu.Unlock()

	logger.Info("JetStream consumer started",
		logger.String("stream", cfg.StreamName),
		logger.String("consumer", cfg.ConsumerName),
		logger.String("subject", cfg.FilterSubject))
	return nil
}

// Health checks the connection and JetStream availability
func (c *Client) Health(ctx context.Context) error {
	if !c.IsConnected() {
		return errors.New("NATS not connected")
	}
	if _, err := c.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("JetStream not available: %w", err)
	}
	return nil
}

// StopConsumers stops every running consumer
func (c *Client) StopConsumers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cc := range c.consumers {
		cc.Stop()
	}
	c.consumers = nil
}

// Close drains consumers and closes the connection
func (c *Client) Close() {
	c.StopConsumers()
	if c.conn != nil {
		c.conn.Close()
	}
}

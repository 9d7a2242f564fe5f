package nsq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/opencollective/ledger/internal/pkg/logger"
)

// Producer handles publishing messages to NSQ topics
type Producer struct {
	producer *nsq.Producer
}

// NewProducer creates a new NSQ producer
func NewProducer(address string) (*Producer, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ producer: %w", err)
	}

	if err = producer.Ping(); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("failed to ping NSQ daemon: %w", err)
	}

	return &Producer{producer: producer}, nil
}

// DeferredPublishJSON sends a message that becomes visible to consumers after delay
func (p *Producer) DeferredPublishJSON(topic string, delay time.Duration, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err = p.producer.DeferredPublish(topic, delay, msgBytes); err != nil {
		return fmt.Errorf("failed to publish deferred message: %w", err)
	}

	logger.Debug("Published deferred message",
		logger.String("topic", topic),
		logger.Duration("delay", delay))
	return nil
}

// Ping checks connectivity with nsqd
func (p *Producer) Ping() error {
	return p.producer.Ping()
}

// Stop gracefully stops the producer
func (p *Producer) Stop() {
	p.producer.Stop()
}

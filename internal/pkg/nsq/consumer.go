package nsq

import (
	"encoding/json"
	"fmt"

	"github.com/nsqio/go-nsq"
	"github.com/opencollective/ledger/internal/pkg/logger"
)

// MessageHandler is a function that processes NSQ messages
type MessageHandler func(message []byte) error

// Consumer handles consuming messages from NSQ topics
type Consumer struct {
	consumer *nsq.Consumer
}

// NewConsumer creates a consumer for topic/channel. Handler errors requeue the message.
func NewConsumer(topic, channel string, maxAttempts uint16, handler MessageHandler) (*Consumer, error) {
	config := nsq.NewConfig()
	if maxAttempts > 0 {
		config.MaxAttempts = maxAttempts
	}

	consumer, err := nsq.NewConsumer(topic, channel, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}
	consumer.SetLogger(nil, nsq.LogLevelError)

	consumer.AddHandler(nsq.HandlerFunc(func(message *nsq.Message) error {
		message.Touch()

		if err := handler(message.Body); err != nil {
			logger.Error("Error processing NSQ message",
				logger.String("topic", topic),
				logger.Int("attempts", int(message.Attempts)),
				logger.Err(err))
			return err
		}
		return nil
	}))

	return &Consumer{consumer: consumer}, nil
}

// Connect connects to lookupd when an address is given, otherwise directly to nsqd
func (c *Consumer) Connect(nsqdAddress, lookupdAddress string) error {
	if lookupdAddress != "" {
		if err := c.consumer.ConnectToNSQLookupd(lookupdAddress); err != nil {
			return fmt.Errorf("failed to connect to NSQ lookupd at %s: %w", lookupdAddress, err)
		}
		return nil
	}
	if err := c.consumer.ConnectToNSQD(nsqdAddress); err != nil {
		return fmt.Errorf("failed to connect to NSQ daemon: %w", err)
	}
	return nil
}

// UnmarshalMessage deserializes a JSON message into the provided struct
func UnmarshalMessage(messageBody []byte, v interface{}) error {
	if err := json.Unmarshal(messageBody, v); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	c.consumer.Stop()
	<-c.consumer.StopChan
}

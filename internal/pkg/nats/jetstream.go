package nats

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/opencollective/ledger/internal/pkg/constants"
)

// StreamConfig describes a JetStream stream
type StreamConfig struct {
	Name      string
	Subjects  []string
	Retention jetstream.RetentionPolicy
	Storage   jetstream.StorageType
	Replicas  int
	MaxAge    time.Duration
	MaxBytes  int64
	MaxMsgs   int64
	Discard   jetstream.DiscardPolicy
}

func (s StreamConfig) toJetStream() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:      s.Name,
		Subjects:  s.Subjects,
		Retention: s.Retention,
		Storage:   s.Storage,
		Replicas:  s.Replicas,
		MaxAge:    s.MaxAge,
		MaxBytes:  s.MaxBytes,
		MaxMsgs:   s.MaxMsgs,
		Discard:   s.Discard,
	}
}

// ConsumerConfig describes a durable JetStream consumer
type ConsumerConfig struct {
	StreamName    string
	ConsumerName  string
	FilterSubject string
	DeliverPolicy jetstream.DeliverPolicy
	AckPolicy     jetstream.AckPolicy
	AckWait       time.Duration
	MaxDeliver    int
	ReplayPolicy  jetstream.ReplayPolicy
	MaxAckPending int
}

func (c ConsumerConfig) toJetStream() jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Durable:       c.ConsumerName,
		FilterSubject: c.FilterSubject,
		DeliverPolicy: c.DeliverPolicy,
		AckPolicy:     c.AckPolicy,
		AckWait:       c.AckWait,
		MaxDeliver:    c.MaxDeliver,
		ReplayPolicy:  c.ReplayPolicy,
		MaxAckPending: c.MaxAckPending,
	}
}

// StreamConfigBuilder helps build stream configurations
type StreamConfigBuilder struct {
	config StreamConfig
}

// NewStreamConfigBuilder creates a builder with file storage and a 7 day limit
func NewStreamConfigBuilder(name string) *StreamConfigBuilder {
	return &StreamConfigBuilder{
		config: StreamConfig{
			Name:      name,
			Retention: jetstream.LimitsPolicy,
			Storage:   jetstream.FileStorage,
			Replicas:  1,
			MaxAge:    7 * 24 * time.Hour,
			MaxBytes:  512 * 1024 * 1024,
			MaxMsgs:   5000000,
			Discard:   jetstream.DiscardOld,
		},
	}
}

// WithSubjects sets the subjects for the stream
func (b *StreamConfigBuilder) WithSubjects(subjects ...string) *StreamConfigBuilder {
	b.config.Subjects = subjects
	return b
}

// WithStorage sets the storage type
func (b *StreamConfigBuilder) WithStorage(storage jetstream.StorageType) *StreamConfigBuilder {
	b.config.Storage = storage
	return b
}

// WithReplicas sets the number of replicas
func (b *StreamConfigBuilder) WithReplicas(replicas int) *StreamConfigBuilder {
	b.config.Replicas = replicas
	return b
}

// WithMaxAge sets the maximum age for messages
func (b *StreamConfigBuilder) WithMaxAge(maxAge time.Duration) *StreamConfigBuilder {
	b.config.MaxAge = maxAge
	return b
}

// Build returns the stream configuration
func (b *StreamConfigBuilder) Build() StreamConfig {
	return b.config
}

// ConsumerConfigBuilder helps build consumer configurations
type ConsumerConfigBuilder struct {
	config ConsumerConfig
}

// NewConsumerConfigBuilder creates a new consumer configuration builder
func NewConsumerConfigBuilder(streamName, consumerName string) *ConsumerConfigBuilder {
	return &ConsumerConfigBuilder{
		config: ConsumerConfig{
			StreamName:    streamName,
			ConsumerName:  consumerName,
			DeliverPolicy: jetstream.DeliverAllPolicy,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       30 * time.Second,
			MaxDeliver:    5,
			ReplayPolicy:  jetstream.ReplayInstantPolicy,
			MaxAckPending: 1000,
		},
	}
}

// WithSubject sets the filter subject
func (b *ConsumerConfigBuilder) WithSubject(subject string) *ConsumerConfigBuilder {
	b.config.FilterSubject = subject
	return b
}

// WithDeliverPolicy sets the deliver policy
func (b *ConsumerConfigBuilder) WithDeliverPolicy(policy jetstream.DeliverPolicy) *ConsumerConfigBuilder {
	b.config.DeliverPolicy = policy
	return b
}

// WithAckWait sets the acknowledgment wait time
func (b *ConsumerConfigBuilder) WithAckWait(ackWait time.Duration) *ConsumerConfigBuilder {
	b.config.AckWait = ackWait
	return b
}

// WithMaxDeliver sets the maximum delivery attempts
func (b *ConsumerConfigBuilder) WithMaxDeliver(maxDeliver int) *ConsumerConfigBuilder {
	b.config.MaxDeliver = maxDeliver
	return b
}

// Build returns the consumer configuration
func (b *ConsumerConfigBuilder) Build() ConsumerConfig {
	return b.config
}

// LedgerStreamConfig is the stream carrying ledger events
func LedgerStreamConfig() StreamConfig {
	return NewStreamConfigBuilder(constants.StreamLedger).
		WithSubjects(constants.SubjectLedgerAll).
		Build()
}

// SearchSyncConsumerConfig subscribes the search sync worker to recorded and refunded transactions
func SearchSyncConsumerConfig() ConsumerConfig {
	return NewConsumerConfigBuilder(constants.StreamLedger, constants.ConsumerSearchSync).
		WithSubject(constants.SubjectTransactionsAll).
		WithDeliverPolicy(jetstream.DeliverNewPolicy).
		Build()
}

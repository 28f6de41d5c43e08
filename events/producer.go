package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Exchange is published once per completed question/answer cycle
type Exchange struct {
	SessionID   string    `json:"session_id"`
	Query       string    `json:"query"`
	Reply       string    `json:"reply"`
	ContentSize int       `json:"content_size"`
	Cached      bool      `json:"cached"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher delivers exchange events
type Publisher interface {
	PublishExchange(ctx context.Context, ex Exchange) error
	Close() error
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher publishes exchanges to a Kafka topic, keyed by session id
// so a session's exchanges stay ordered within a partition
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher creates a synchronous Kafka producer
func NewKafkaPublisher(cfg ProducerConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 0
	saramaConfig.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishExchange encodes ex as JSON and sends it
func (k *KafkaPublisher) PublishExchange(ctx context.Context, ex Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(ex.SessionID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish exchange: %w", err)
	}
	return nil
}

// Close flushes and shuts down the producer
func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}

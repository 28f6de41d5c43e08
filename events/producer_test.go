package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExchange() Exchange {
	return Exchange{
		SessionID:   "session-1",
		Query:       "weather today",
		Reply:       "Sunny.",
		ContentSize: 42,
		Cached:      true,
		CompletedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishExchange(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Exchange
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.SessionID != "session-1" || got.Query != "weather today" || !got.Cached {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "exchanges")
	require.NoError(t, pub.PublishExchange(context.Background(), sampleExchange()))
	require.NoError(t, pub.Close())
}

func TestPublishExchangeFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "exchanges")
	err := pub.PublishExchange(context.Background(), sampleExchange())
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Contains(t, err.Error(), "failed to publish exchange")
	require.NoError(t, pub.Close())
}

func TestPublishExchangeCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWithProducer(producer, "exchanges")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pub.PublishExchange(ctx, sampleExchange()), context.Canceled)
	require.NoError(t, pub.Close())
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(ProducerConfig{Topic: "t"})
	assert.Error(t, err)
}

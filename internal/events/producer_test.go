package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestProducer_Publish(t *testing.T) {
	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := &Producer{
			events: make(chan Event, 1),
			logger: zap.New(core),
		}

		producer.Publish(Event{Type: Created, Kind: KindClaim, ID: 1})
		producer.Publish(Event{Type: Created, Kind: KindClaim, ID: 2})

		assert.Len(t, producer.events, 1)
		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	})

	t.Run("stamps occurrence time", func(t *testing.T) {
		producer := &Producer{events: make(chan Event, 1), logger: zaptest.NewLogger(t)}
		producer.Publish(Event{Type: Deleted, Kind: KindMachine, ID: 3})

		event := <-producer.events
		assert.False(t, event.OccurredAt.IsZero())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	producer := &Producer{
		writer: mockWriter,
		logger: zaptest.NewLogger(t),
	}
	event := Event{
		Type:       Updated,
		Kind:       KindMaintenance,
		ID:         7,
		ActorID:    1,
		OccurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Record:     map[string]any{"id": 7},
	}

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

		producer.sendEvent(context.Background(), event)

		value, err := json.Marshal(event)
		require.NoError(t, err)
		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{Key: []byte("maintenance:7"), Value: value},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ any) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		producer.sendEvent(context.Background(), event)

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_CloseFlushesQueue(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, 10, zaptest.NewLogger(t))
	producer.Publish(Event{Type: Created, Kind: KindMachine, ID: 1})
	producer.Publish(Event{Type: Created, Kind: KindMachine, ID: 2})
	producer.Close()

	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 2)
	mockWriter.AssertCalled(t, "Close")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	p.Publish(Event{Type: Created})
	p.Close()
}

func TestNewProducer_NoBrokers(t *testing.T) {
	p, err := NewProducer(nil, "silant.records", zap.NewNop())
	assert.Nil(t, p)
	assert.EqualError(t, err, "no Kafka brokers configured")
}

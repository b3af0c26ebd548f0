// Package events publishes record changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	Created EventType = "created"
	Updated EventType = "updated"
	Deleted EventType = "deleted"
)

// Kinds of record an event can be about.
const (
	KindMachine     = "machine"
	KindMaintenance = "maintenance"
	KindClaim       = "claim"
)

// Event describes one change. Record is the API representation of the
// record after the change and is omitted for deletions.
type Event struct {
	Type       EventType `json:"type"`
	Kind       string    `json:"kind"`
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     any       `json:"record,omitempty"`
}

func (e Event) key() []byte {
	return []byte(e.Kind + ":" + strconv.FormatInt(e.ID, 10))
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(event Event)
	Close()
}

// Noop discards every event. It is used when events are disabled.
type Noop struct{}

func (Noop) Publish(Event) {}
func (Noop) Close()        {}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues events in memory and writes them from a single goroutine.
type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// NewProducer creates the topic if needed and starts the send loop.
func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	logger = logger.Named("kafka_producer")
	if len(brokers) == 0 {
		return nil, errors.New("no Kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}
	return newProducer(writer, 1000, logger), nil
}

func newProducer(writer KafkaWriter, queue int, logger *zap.Logger) *Producer {
	p := &Producer{
		writer:    writer,
		events:    make(chan Event, queue),
		logger:    logger,
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

// Publish queues event, dropping it when the queue is full.
func (p *Producer) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("kind", event.Kind),
			zap.Int64("id", event.ID),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			p.drain()
			return
		}
	}
}

// drain sends whatever is still queued at shutdown.
func (p *Producer) drain() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("kind", event.Kind),
			zap.Int64("id", event.ID),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   event.key(),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("kind", event.Kind),
			zap.Int64("id", event.ID),
		)
	}
}

// Close stops the send loop after flushing queued events.
func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

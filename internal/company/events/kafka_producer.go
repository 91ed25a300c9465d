// Package events publishes and consumes company lifecycle events over Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CompanyCreated EventType = "company_created"
	CompanyMerged  EventType = "company_merged"
)

// HeaderEventType carries the event type on every message so consumers
// can filter without decoding the payload.
const HeaderEventType = "event_type"

const (
	defaultQueueSize    = 1000
	defaultFlushTimeout = 5 * time.Second
	deliveryRetries     = 3
)

// Event is the payload published for every submission outcome that
// wrote a record.
type Event struct {
	Type       EventType       `json:"type"`
	Company    *models.Company `json:"company"`
	Version    int             `json:"version"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer delivers events from a bounded in-memory queue on a single
// background goroutine. Produce never blocks the caller.
type Producer struct {
	writer       KafkaWriter
	queue        chan Event
	logger       *zap.Logger
	closing      chan struct{}
	done         chan struct{}
	flushTimeout time.Duration
	now          func() time.Time
	newBackOff   func() backoff.BackOff
}

// NewProducer ensures topic exists on the brokers and starts the
// delivery loop.
func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}); err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	p := newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
	}, logger, defaultQueueSize)
	go p.run()
	return p, nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger, queueSize int) *Producer {
	return &Producer{
		writer:       writer,
		queue:        make(chan Event, queueSize),
		logger:       logger.Named("kafka_producer"),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		flushTimeout: defaultFlushTimeout,
		now:          time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return backoff.WithMaxRetries(b, deliveryRetries)
		},
	}
}

// Produce queues an event for company. When the queue is full the event
// is dropped with a warning; the submission that caused it has already
// been stored.
func (p *Producer) Produce(eventType EventType, company *models.Company) {
	event := Event{
		Type:       eventType,
		Company:    company,
		Version:    company.Version,
		OccurredAt: p.now().UTC(),
	}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("company_id", company.ID.String()),
		)
	}
}

func (p *Producer) run() {
	defer close(p.done)
	for {
		select {
		case event := <-p.queue:
			p.deliver(context.Background(), event)
		case <-p.closing:
			p.flush()
			return
		}
	}
}

// flush delivers whatever is still queued, bounded by flushTimeout.
func (p *Producer) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), p.flushTimeout)
	defer cancel()
	for {
		select {
		case event := <-p.queue:
			if ctx.Err() != nil {
				p.logger.Warn("Flush timed out, dropping queued events",
					zap.Int("dropped", len(p.queue)+1))
				return
			}
			p.deliver(ctx, event)
		default:
			return
		}
	}
}

func (p *Producer) deliver(ctx context.Context, event Event) {
	msg, err := encodeEvent(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("company_id", event.Company.ID.String()),
		)
		return
	}

	err = backoff.RetryNotify(func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, backoff.WithContext(p.newBackOff(), ctx), func(err error, wait time.Duration) {
		p.logger.Debug("Retrying event delivery",
			zap.Error(err),
			zap.Duration("wait", wait),
			zap.String("company_id", event.Company.ID.String()),
		)
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("company_id", event.Company.ID.String()),
		)
	}
}

// encodeEvent keys the message by company id so all events of one
// company land on one partition in order.
func encodeEvent(event Event) (kafka.Message, error) {
	value, err := jsonMarshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.Company.ID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}, nil
}

// Close stops accepting work, flushes the queue and closes the writer.
// It must be called once.
func (p *Producer) Close() {
	close(p.closing)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// Package events publishes pipeline outcome events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/internal/domain/entities"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/metrics"
)

// EventTypeSpeakersRecognized is carried in the eventType header
const EventTypeSpeakersRecognized = "speakers.recognized"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a single Kafka topic. When disabled it only logs.
type Publisher struct {
	writer  messageWriter
	topic   string
	enabled bool
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Config holds Kafka publisher configuration
type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// New creates a publisher. A nil or disabled config yields log-only mode.
func New(cfg *Config, m *metrics.Metrics, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		logger.Info("kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: m, logger: logger}
	}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info("kafka disabled, using log-only mode")
		return &Publisher{topic: cfg.Topic, metrics: m, logger: logger}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info("kafka publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		enabled: true,
		metrics: m,
		logger:  logger,
	}
}

// PublishSpeakersRecognized publishes the event keyed by meeting ID so all
// events for a meeting land on the same partition.
func (p *Publisher) PublishSpeakersRecognized(ctx context.Context, event entities.SpeakersRecognizedEvent) error {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return p.publish(ctx, EventTypeSpeakersRecognized, event.MeetingID.String(), event)
}

func (p *Publisher) publish(ctx context.Context, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("topic", p.topic), zap.Error(err))
		return err
	}

	p.logger.Debug("publishing event",
		zap.String("topic", p.topic),
		zap.String("key", key),
		zap.ByteString("payload", payload),
	)

	if !p.enabled || p.writer == nil {
		p.metrics.RecordEventPublish(p.topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to write to kafka",
			zap.String("topic", p.topic),
			zap.String("key", key),
			zap.Error(err),
		)
		p.metrics.RecordEventPublish(p.topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordEventPublish(p.topic, nil, time.Since(start).Seconds())
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

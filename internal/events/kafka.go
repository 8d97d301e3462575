package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

type KafkaPublisher struct {
	w      *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher returns an asynchronous publisher: Publish only queues
// the message and delivery failures are logged once the batch completes.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &KafkaPublisher{logger: logger}
	p.w = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		Async:                  true,
		Completion:             p.completed,
	}
	return p
}

// New returns a Kafka publisher, or a no-op one when no brokers are set.
func New(brokers []string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, logger)
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, ev Event) error {
	msg, err := message(topic, key, ev)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.logger.Warn("publish_event_error", "topic", m.Topic, "key", string(m.Key), "type", eventType(m), "error", err)
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func message(topic, key string, ev Event) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}, nil
}

package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Config holds Kafka consumer configuration.
type Config struct {
	Brokers []string `env:"KAFKA_BROKERS,required" envSeparator:","`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"notifykit"`
	Topics  []string `env:"KAFKA_TOPICS,required" envSeparator:","`
}

// Notification is the inbound payload item: one notification destined for
// one user. NewType, when present, overrides the message topic as the
// effective classification type.
type Notification struct {
	UserID   string         `json:"userId"`
	NewType  string         `json:"newType,omitempty"`
	Contents map[string]any `json:"contents"`
}

// Message is one notification together with its originating topic and the
// raw payload it was decoded from.
type Message struct {
	Topic        string
	Raw          json.RawMessage
	Notification Notification
}

// EffectiveType resolves the classification type: the notification's
// explicit type when set, otherwise the topic name.
func (m Message) EffectiveType() string {
	if m.Notification.NewType != "" {
		return m.Notification.NewType
	}
	return m.Topic
}

// Handler processes one inbound notification. A returned error is logged
// and the stream continues; no offset is replayed by this layer.
type Handler func(ctx context.Context, msg Message) error

// envelope is the wire shape of an inbound Kafka message: a batch of
// notifications sharing one topic.
type envelope struct {
	Notifications []Notification `json:"notifications"`
}

// Consumer reads notification events from Kafka and hands them to a Handler
// one notification at a time. Delivery is at-least-once; deduplication, if
// needed, belongs upstream.
type Consumer struct {
	reader *kafka.Reader
	log    *slog.Logger
}

// New creates a Kafka consumer for the configured topics.
func New(cfg Config, log *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one broker")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer requires group id")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("kafka consumer requires at least one topic")
	}
	if log == nil {
		log = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	return &Consumer{reader: reader, log: log}, nil
}

// Run consumes messages until the context is canceled. Malformed payloads
// and handler errors are logged and skipped; the stream keeps moving.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read kafka message: %w", err)
		}

		for _, n := range Decode(msg.Topic, msg.Value) {
			if err := handle(ctx, n); err != nil {
				c.log.ErrorContext(ctx, "failed to handle notification",
					logger.Topic(n.Topic),
					logger.UserID(n.Notification.UserID),
					logger.Error(err))
			}
		}
	}
}

// Decode unpacks one raw Kafka message into per-notification Messages.
// Payloads without a notifications array are treated as a single
// notification. Exposed for tests and replay tooling.
func Decode(topic string, value []byte) []Message {
	var env envelope
	if err := json.Unmarshal(value, &env); err == nil && len(env.Notifications) > 0 {
		out := make([]Message, len(env.Notifications))
		for i, n := range env.Notifications {
			out[i] = Message{Topic: topic, Raw: value, Notification: n}
		}
		return out
	}

	var single Notification
	if err := json.Unmarshal(value, &single); err != nil || single.UserID == "" {
		return nil
	}
	return []Message{{Topic: topic, Raw: value, Notification: single}}
}

// Close releases the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

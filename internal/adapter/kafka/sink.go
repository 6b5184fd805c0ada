// Package kafka hands stored notifications to the push bridge through a
// Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"bazaar-ads/internal/config/configs"
	"bazaar-ads/internal/core/domain"
)

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PushMessage is the payload consumed by the push bridge.
type PushMessage struct {
	NotificationID string                  `json:"notificationId"`
	UserID         string                  `json:"userId"`
	Kind           domain.NotificationKind `json:"kind"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body"`
	CampaignID     string                  `json:"campaignId,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// NotificationSink implements port.NotificationSink.
type NotificationSink struct {
	writer MessageWriter
}

// NewWriter returns a writer for the configured topic. Messages are
// balanced by key so a user's notifications stay ordered.
func NewWriter(cfg configs.Kafka) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewNotificationSink wraps writer.
func NewNotificationSink(writer MessageWriter) *NotificationSink {
	return &NotificationSink{writer: writer}
}

// Deliver writes one message per notification keyed by user id. The trace
// context of ctx travels in the message headers.
func (s *NotificationSink) Deliver(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		msg, err := newMessage(ctx, n)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write notifications: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *NotificationSink) Close() error {
	return s.writer.Close()
}

func newMessage(ctx context.Context, n domain.Notification) (kafka.Message, error) {
	value, err := json.Marshal(PushMessage{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Kind:           n.Kind,
		Title:          n.Title,
		Body:           n.Body,
		CampaignID:     n.CampaignID,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode notification %s: %w", n.ID, err)
	}
	msg := kafka.Message{Key: []byte(n.UserID), Value: value}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &msg.Headers})
	return msg, nil
}

// headerCarrier adapts Kafka message headers to propagation.TextMapCarrier.
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

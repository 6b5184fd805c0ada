package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"bazaar-ads/internal/config/configs"
	"bazaar-ads/internal/core/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestDeliverKeysByUser(t *testing.T) {
	w := &fakeWriter{}
	sink := NewNotificationSink(w)

	err := sink.Deliver(context.Background(), []domain.Notification{
		{ID: "n1", UserID: "u1", Kind: domain.NotificationAdApproved, Title: "Ad approved", Body: "live", CampaignID: "c1", CreatedAt: t0},
		{ID: "n2", UserID: "u2", Kind: domain.NotificationAdStopped, Title: "Ad stopped", Body: "refund", CreatedAt: t0},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	assert.Equal(t, "u1", string(w.msgs[0].Key))
	assert.Equal(t, "u2", string(w.msgs[1].Key))

	var got PushMessage
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, PushMessage{
		NotificationID: "n1",
		UserID:         "u1",
		Kind:           domain.NotificationAdApproved,
		Title:          "Ad approved",
		Body:           "live",
		CampaignID:     "c1",
		CreatedAt:      t0,
	}, got)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestDeliverNothing(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	assert.NoError(t, NewNotificationSink(w).Deliver(context.Background(), nil))
}

func TestDeliverWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	err := NewNotificationSink(w).Deliver(context.Background(), []domain.Notification{{ID: "n1", UserID: "u1"}})
	assert.ErrorContains(t, err, "broker down")
}

func TestHeaderCarrierPropagatesTrace(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var headers []kafka.Header
	carrier := headerCarrier{headers: &headers}
	propagation.TraceContext{}.Inject(ctx, carrier)
	require.Contains(t, carrier.Keys(), "traceparent")

	extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), carrier))
	assert.Equal(t, sc.TraceID(), extracted.TraceID())
	assert.Equal(t, sc.SpanID(), extracted.SpanID())

	carrier.Set("traceparent", "x")
	assert.Equal(t, "x", carrier.Get("traceparent"))
	assert.Len(t, headers, 1)
}

func TestNewWriter(t *testing.T) {
	w := NewWriter(configs.Kafka{Brokers: []string{"k1:9092"}, Topic: "push"})
	assert.Equal(t, "push", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

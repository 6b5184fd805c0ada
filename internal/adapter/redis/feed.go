// Package redis shares change events between service replicas over a
// Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"bazaar-ads/internal/config/configs"
	"bazaar-ads/internal/core/domain"
)

// subscriberBuffer is the number of decoded events a subscriber may lag
// behind before further events to it are dropped.
const subscriberBuffer = 64

// ChangeFeed implements port.ChangePublisher and port.ChangeSubscriber.
type ChangeFeed struct {
	client  *goredis.Client
	channel string
	logger  *slog.Logger
}

// NewClient connects to the configured server and verifies the connection.
func NewClient(ctx context.Context, cfg configs.Redis) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewChangeFeed publishes to and subscribes on channel.
func NewChangeFeed(client *goredis.Client, channel string, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, channel: channel, logger: logger}
}

// Publish sends every event as its own JSON message.
func (f *ChangeFeed) Publish(ctx context.Context, events []domain.ChangeEvent) error {
	pipe := f.client.Pipeline()
	for _, ev := range events {
		payload, err := encode(ev)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, f.channel, payload)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe listens on the channel until ctx is done. Malformed messages
// are logged and skipped.
func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	sub := f.client.Subscribe(ctx, f.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan domain.ChangeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				ev, err := decode(msg.Payload)
				if err != nil {
					f.logger.Warn("skip malformed change event", slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return out, nil
}

func encode(ev domain.ChangeEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode change event: %w", err)
	}
	return payload, nil
}

func decode(payload string) (domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Kind == "" || ev.ID == "" {
		return ev, fmt.Errorf("decode change event: missing kind or id")
	}
	return ev, nil
}

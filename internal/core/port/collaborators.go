package port

import (
	"context"

	"bazaar-ads/internal/core/domain"
)

// RateProvider serves the current per-day campaign rates.
type RateProvider interface {
	Rates(ctx context.Context) (domain.AdRates, error)
}

// ChangePublisher announces committed changes to live subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, events []domain.ChangeEvent) error
}

// ChangeSubscriber streams change events until ctx is done. The returned
// channel is closed when the subscription ends.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error)
}

// NotificationSink delivers notifications to the push bridge.
type NotificationSink interface {
	Deliver(ctx context.Context, notifications []domain.Notification) error
}

package memory

import (
	"context"
	"sync"

	"bazaar-ads/internal/core/domain"
)

// subscriberBuffer is the number of events a slow subscriber may lag
// behind before events to it are dropped.
const subscriberBuffer = 64

// Broadcaster fans change events out to in-process subscribers. It is used
// when no Redis change feed is configured.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan domain.ChangeEvent]struct{}
}

// NewBroadcaster returns a broadcaster without subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan domain.ChangeEvent]struct{})}
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *Broadcaster) Publish(_ context.Context, events []domain.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	ch := make(chan domain.ChangeEvent, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

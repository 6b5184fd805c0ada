package usecase

import (
	"context"
	"log/slog"
	"time"

	"bazaar-ads/internal/core/port"
)

// ExpiryWorker periodically completes campaigns whose paid period is over.
type ExpiryWorker struct {
	campaigns port.CampaignUseCase
	interval  time.Duration
	logger    *slog.Logger
}

// NewExpiryWorker returns a worker that runs every interval.
func NewExpiryWorker(campaigns port.CampaignUseCase, interval time.Duration, logger *slog.Logger) *ExpiryWorker {
	return &ExpiryWorker{campaigns: campaigns, interval: interval, logger: logger}
}

// Run blocks until ctx is done.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.logger.Info("expiry worker started", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.tick(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("expiry worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	n, err := w.campaigns.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		w.logger.Error("expire campaigns", slog.Any("error", err))
		return
	}
	if n > 0 {
		w.logger.Info("campaigns expired", slog.Int("count", n))
	}
}

// NotificationRelay moves stored notifications to the push bridge.
type NotificationRelay struct {
	outbox   port.NotificationOutbox
	sink     port.NotificationSink
	interval time.Duration
	batch    int
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotificationRelay returns a relay that flushes up to batch
// notifications every interval.
func NewNotificationRelay(outbox port.NotificationOutbox, sink port.NotificationSink, interval time.Duration, batch int, logger *slog.Logger) *NotificationRelay {
	return &NotificationRelay{outbox: outbox, sink: sink, interval: interval, batch: batch, logger: logger, now: time.Now}
}

// Run blocks until ctx is done.
func (r *NotificationRelay) Run(ctx context.Context) error {
	r.logger.Info("notification relay started", slog.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Flush(ctx); err != nil {
			r.logger.Error("relay notifications", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			r.logger.Info("notification relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Flush delivers one batch and returns how many notifications were sent.
// Notifications are marked delivered only after the sink accepted them, so
// a failed batch is retried on the next pass.
func (r *NotificationRelay) Flush(ctx context.Context) (int, error) {
	pending, err := r.outbox.PendingNotifications(ctx, r.batch)
	if err != nil {
		return 0, wrap("pending notifications", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if err = r.sink.Deliver(ctx, pending); err != nil {
		return 0, wrap("deliver notifications", err)
	}
	ids := make([]string, 0, len(pending))
	for _, n := range pending {
		ids = append(ids, n.ID)
	}
	if err = r.outbox.MarkNotificationsDelivered(ctx, ids, r.now().UTC()); err != nil {
		return 0, wrap("mark notifications delivered", err)
	}
	notificationsRelayed.Add(float64(len(ids)))
	return len(ids), nil
}

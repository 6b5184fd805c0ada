package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bazaar-ads/internal/core/domain"
)

var (
	ledgerAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_ledger_amount_total",
		Help: "Sum of committed wallet movements by transaction type",
	}, []string{"type"})

	campaignTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_campaign_transitions_total",
		Help: "Committed campaign lifecycle transitions",
	}, []string{"event"})

	campaignRefunds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_campaign_refund_amount_total",
		Help: "Sum of refunds paid back to vendors",
	})

	trackingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_tracking_events_total",
		Help: "Impression, click and conversion events by outcome",
	}, []string{"event", "result"})

	notificationsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_notifications_relayed_total",
		Help: "Notifications handed to the push bridge",
	})
)

func observeTransaction(t *domain.Transaction) {
	if t == nil {
		return
	}
	ledgerAmount.WithLabelValues(string(t.Type)).Add(float64(t.Amount))
}

package domain

import "time"

// NotificationKind classifies a user notification.
type NotificationKind string

const (
	NotificationAdApproved NotificationKind = "ad_approved"
	NotificationAdRejected NotificationKind = "ad_rejected"
	NotificationAdStopped  NotificationKind = "ad_stopped"
)

// Notification is a message to a user. It is stored with the state change
// that caused it and later handed to the push bridge.
type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	CampaignID  string           `json:"campaignId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	DeliveredAt *time.Time       `json:"deliveredAt,omitempty"`
}

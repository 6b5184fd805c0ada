package domain

import "time"

// ChangeKind names the record type a ChangeEvent refers to.
type ChangeKind string

const (
	ChangeWallet   ChangeKind = "wallet"
	ChangeCampaign ChangeKind = "campaign"
	ChangeListing  ChangeKind = "listing"
)

// ChangeEvent tells live subscribers that a record changed. Subscribers
// re-read the record; the event carries no payload.
type ChangeEvent struct {
	Kind   ChangeKind `json:"kind"`
	ID     string     `json:"id"`
	UserID string     `json:"userId"`
	At     time.Time  `json:"at"`
}

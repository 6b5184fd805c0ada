package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignType is the placement a vendor pays for.
type CampaignType string

const (
	CampaignFeaturedListing CampaignType = "featured_listing"
	CampaignBannerAd        CampaignType = "banner_ad"
	CampaignSocialBoost     CampaignType = "social_boost"
)

// CampaignTypes lists every known campaign type.
var CampaignTypes = []CampaignType{CampaignFeaturedListing, CampaignBannerAd, CampaignSocialBoost}

// Valid reports whether t is a known campaign type.
func (t CampaignType) Valid() bool {
	switch t {
	case CampaignFeaturedListing, CampaignBannerAd, CampaignSocialBoost:
		return true
	}
	return false
}

// CampaignStatus is a state of the campaign lifecycle.
type CampaignStatus string

const (
	StatusPendingApproval CampaignStatus = "pending_approval"
	StatusActive          CampaignStatus = "active"
	StatusPaused          CampaignStatus = "paused"
	StatusCompleted       CampaignStatus = "completed"
	StatusRejected        CampaignStatus = "rejected"
)

// Open reports whether the status still holds the listing, i.e. the
// campaign is neither completed nor rejected.
func (s CampaignStatus) Open() bool {
	return s == StatusPendingApproval || s == StatusActive || s == StatusPaused
}

// CampaignGoal is what the vendor optimises the campaign for.
type CampaignGoal string

const (
	GoalTraffic   CampaignGoal = "traffic"
	GoalCalls     CampaignGoal = "calls"
	GoalAwareness CampaignGoal = "awareness"
)

// CampaignPriority orders requests in the admin queue.
type CampaignPriority string

const (
	PriorityHigh   CampaignPriority = "high"
	PriorityNormal CampaignPriority = "normal"
)

const (
	// DefaultTargetLocation is used when a request names no location.
	DefaultTargetLocation = "All Pakistan"
	// MaxDurationDays bounds the length of a single campaign.
	MaxDurationDays = 365

	day = 24 * time.Hour
)

// CampaignMetrics are write-mostly counters fed by listing traffic.
type CampaignMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	Conversions int64   `json:"conversions"`
}

// Campaign is a paid, time-boxed promotion of one listing. TotalCost is
// locked at submission and never recomputed.
type Campaign struct {
	ID             string           `json:"id"`
	VendorID       string           `json:"vendorId"`
	ListingID      string           `json:"listingId"`
	ListingTitle   string           `json:"listingTitle"`
	ListingImage   string           `json:"listingImage"`
	Type           CampaignType     `json:"type"`
	DurationDays   int              `json:"durationDays"`
	TotalCost      int64            `json:"totalCost"`
	TargetLocation string           `json:"targetLocation"`
	Goal           CampaignGoal     `json:"goal"`
	Priority       CampaignPriority `json:"priority"`
	Status         CampaignStatus   `json:"status"`
	StatusReason   string           `json:"statusReason,omitempty"`
	StartDate      *time.Time       `json:"startDate,omitempty"`
	EndDate        *time.Time       `json:"endDate,omitempty"`
	Metrics        CampaignMetrics  `json:"metrics"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CampaignRequest is what a vendor submits to start a promotion.
type CampaignRequest struct {
	ListingID      string           `json:"listingId"`
	Type           CampaignType     `json:"type"`
	DurationDays   int              `json:"durationDays"`
	TargetLocation string           `json:"targetLocation"`
	Goal           CampaignGoal     `json:"goal"`
	Priority       CampaignPriority `json:"priority"`
}

// Normalize fills defaults and validates the request.
func (r *CampaignRequest) Normalize() error {
	if r.ListingID == "" {
		return fmt.Errorf("%w: listing id is required", ErrInvalidCampaign)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown campaign type %q", ErrInvalidCampaign, r.Type)
	}
	if r.DurationDays < 1 || r.DurationDays > MaxDurationDays {
		return fmt.Errorf("%w: duration must be between 1 and %d days", ErrInvalidCampaign, MaxDurationDays)
	}
	if r.TargetLocation == "" {
		r.TargetLocation = DefaultTargetLocation
	}
	switch r.Goal {
	case "":
		r.Goal = GoalTraffic
	case GoalTraffic, GoalCalls, GoalAwareness:
	default:
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidCampaign, r.Goal)
	}
	switch r.Priority {
	case "":
		r.Priority = PriorityNormal
	case PriorityHigh, PriorityNormal:
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidCampaign, r.Priority)
	}
	return nil
}

func (c *Campaign) transition(to CampaignStatus, now time.Time, from ...CampaignStatus) error {
	for _, s := range from {
		if c.Status == s {
			c.Status = to
			c.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
}

// Approve activates a pending campaign. The paid period starts now.
func (c *Campaign) Approve(now time.Time) error {
	if err := c.transition(StatusActive, now, StatusPendingApproval); err != nil {
		return err
	}
	start := now
	end := now.Add(time.Duration(c.DurationDays) * day)
	c.StartDate, c.EndDate = &start, &end
	c.Priority = PriorityNormal
	return nil
}

// Reject turns a pending request down. The returned amount is the full
// cost, owed back to the vendor.
func (c *Campaign) Reject(now time.Time, reason string) (int64, error) {
	if err := c.transition(StatusRejected, now, StatusPendingApproval); err != nil {
		return 0, err
	}
	c.StatusReason = reason
	return c.TotalCost, nil
}

// Cancel is the vendor withdrawing a pending request. It ends in the
// rejected state like Reject and stamps the end date.
func (c *Campaign) Cancel(now time.Time) (int64, error) {
	refund, err := c.Reject(now, "Cancelled")
	if err != nil {
		return 0, err
	}
	end := now
	c.EndDate = &end
	return refund, nil
}

// Pause suspends an active campaign without refund.
func (c *Campaign) Pause(now time.Time) error {
	return c.transition(StatusPaused, now, StatusActive)
}

// Resume reactivates a paused campaign. The end date is kept as is.
func (c *Campaign) Resume(now time.Time) error {
	return c.transition(StatusActive, now, StatusPaused)
}

// Stop completes an active or paused campaign early and returns the
// pro-rated refund for the whole days left.
func (c *Campaign) Stop(now time.Time) (int64, error) {
	refund := c.ProRatedRefund(now)
	if err := c.transition(StatusCompleted, now, StatusActive, StatusPaused); err != nil {
		return 0, err
	}
	end := now
	c.EndDate = &end
	return refund, nil
}

// Expired reports whether the paid period of an active or paused campaign
// is over at now.
func (c *Campaign) Expired(now time.Time) bool {
	if c.Status != StatusActive && c.Status != StatusPaused || c.EndDate == nil {
		return false
	}
	return !c.EndDate.After(now)
}

// RemainingDays is the number of whole days between now and the end date,
// zero when the end date has passed or is unset.
func (c *Campaign) RemainingDays(now time.Time) int64 {
	if c.EndDate == nil {
		return 0
	}
	return max(0, int64(c.EndDate.Sub(now)/day))
}

// ProRatedRefund is floor(remainingDays * dailyRate) with
// dailyRate = totalCost / durationDays. The product is formed before the
// division so fractional daily rates do not lose a unit to rounding.
func (c *Campaign) ProRatedRefund(now time.Time) int64 {
	remaining := c.RemainingDays(now)
	if remaining == 0 || c.DurationDays <= 0 {
		return 0
	}
	refund := decimal.NewFromInt(remaining).
		Mul(decimal.NewFromInt(c.TotalCost)).
		Div(decimal.NewFromInt(int64(c.DurationDays)))
	return min(c.TotalCost, max(0, refund.Floor().IntPart()))
}

// RecordImpression counts one impression and refreshes the ctr.
func (c *Campaign) RecordImpression() {
	c.Metrics.Impressions++
	c.Metrics.CTR = ctr(c.Metrics.Clicks, c.Metrics.Impressions)
}

// RecordClick counts one click and refreshes ctr and cpc. A click without
// a prior impression counts against a single impression.
func (c *Campaign) RecordClick() {
	c.Metrics.Clicks++
	c.Metrics.CTR = ctr(c.Metrics.Clicks, max(c.Metrics.Impressions, 1))
	c.Metrics.CPC = decimal.NewFromInt(c.TotalCost).
		Div(decimal.NewFromInt(c.Metrics.Clicks)).
		Round(2).
		InexactFloat64()
}

// RecordConversion counts one conversion.
func (c *Campaign) RecordConversion() {
	c.Metrics.Conversions++
}

func ctr(clicks, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return decimal.NewFromInt(clicks).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(impressions)).
		Round(2).
		InexactFloat64()
}

// TruncateTitle shortens a listing title for ledger descriptions.
func TruncateTitle(title string, n int) string {
	r := []rune(title)
	if len(r) <= n {
		return title
	}
	return string(r[:n])
}

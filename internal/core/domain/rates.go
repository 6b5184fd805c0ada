package domain

import (
	"fmt"
	"math"
)

// FallbackRate is charged per day for a type missing from the rate table.
const FallbackRate int64 = 100

// MaxRate is the largest cost per day whose quote for MaxDurationDays
// still fits in an int64.
const MaxRate int64 = math.MaxInt64 / MaxDurationDays

// AdRates maps a campaign type to its cost per day.
type AdRates map[CampaignType]int64

// DefaultAdRates returns the rates a fresh installation starts with.
func DefaultAdRates() AdRates {
	return AdRates{
		CampaignFeaturedListing: 100,
		CampaignBannerAd:        500,
		CampaignSocialBoost:     300,
	}
}

// CostPerDay returns the rate for t, falling back to the default table and
// then to FallbackRate.
func (r AdRates) CostPerDay(t CampaignType) int64 {
	if v, ok := r[t]; ok && v > 0 {
		return v
	}
	if v, ok := DefaultAdRates()[t]; ok {
		return v
	}
	return FallbackRate
}

// Quote is the total cost of running a campaign of type t for days.
func (r AdRates) Quote(t CampaignType, days int) (int64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown campaign type %q", ErrInvalidCampaign, t)
	}
	if days < 1 || days > MaxDurationDays {
		return 0, fmt.Errorf("%w: duration must be between 1 and %d days", ErrInvalidCampaign, MaxDurationDays)
	}
	rate := r.CostPerDay(t)
	if rate > MaxRate {
		return 0, fmt.Errorf("%w: rate for %s exceeds %d", ErrInvalidAmount, t, MaxRate)
	}
	return int64(days) * rate, nil
}

// Validate rejects unknown types and rates outside 1..MaxRate.
func (r AdRates) Validate() error {
	for t, v := range r {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown campaign type %q", ErrInvalidCampaign, t)
		}
		if v <= 0 {
			return fmt.Errorf("%w: rate for %s must be positive", ErrInvalidAmount, t)
		}
		if v > MaxRate {
			return fmt.Errorf("%w: rate for %s exceeds %d", ErrInvalidAmount, t, MaxRate)
		}
	}
	return nil
}

package port

import (
	"context"
	"time"

	"bazaar-ads/internal/core/domain"
)

// LedgerUseCase exposes wallets and their history. Every movement is
// recorded as a transaction in the same unit of work as the balance change.
type LedgerUseCase interface {
	// Register creates the caller's user record with an empty wallet if it
	// does not exist yet.
	Register(ctx context.Context, actor domain.Actor, email string) (*domain.User, error)
	SetPushToken(ctx context.Context, actor domain.Actor, token string) error
	Wallet(ctx context.Context, userID string) (*domain.User, error)
	History(ctx context.Context, userID string, page Page) ([]domain.Transaction, error)
	Credit(ctx context.Context, userID string, entry domain.LedgerEntry) (*domain.Transaction, error)
	Debit(ctx context.Context, userID string, entry domain.LedgerEntry) (*domain.Transaction, error)
	// AdjustFunds is the admin path: credit types credit and debit types
	// debit the target wallet.
	AdjustFunds(ctx context.Context, actor domain.Actor, userID string, entry domain.LedgerEntry) (*domain.Transaction, error)
	Notifications(ctx context.Context, userID string, page Page) ([]domain.Notification, error)
}

// CampaignUseCase drives the campaign lifecycle. Every transition applies
// the campaign, listing and wallet changes as one unit.
type CampaignUseCase interface {
	Submit(ctx context.Context, actor domain.Actor, req domain.CampaignRequest) (*domain.Campaign, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Campaign, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)
	Pause(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)
	Resume(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)
	// Stop completes the campaign early and returns the refunded amount.
	Stop(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, int64, error)
	// ExpireDue completes campaigns whose paid period ended before now and
	// returns how many were completed.
	ExpireDue(ctx context.Context, now time.Time) (int, error)

	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error)
	List(ctx context.Context, actor domain.Actor, filter CampaignFilter) ([]domain.Campaign, error)
	Overview(ctx context.Context, actor domain.Actor) (*domain.Overview, error)

	TrackImpression(ctx context.Context, listingID string) error
	TrackClick(ctx context.Context, listingID string) error
	TrackConversion(ctx context.Context, campaignID string) error
}

// ListingUseCase covers the listing operations the promotion workflow needs.
type ListingUseCase interface {
	Create(ctx context.Context, actor domain.Actor, l domain.Listing) (*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	// List returns promoted listings first, then the newest.
	List(ctx context.Context, page Page) ([]domain.Listing, error)
	RecordView(ctx context.Context, id string) error
}

// PricingUseCase manages the shared rate table.
type PricingUseCase interface {
	RateProvider
	UpdateRates(ctx context.Context, actor domain.Actor, rates domain.AdRates) (domain.AdRates, error)
	Quote(ctx context.Context, t domain.CampaignType, days int) (int64, error)
}

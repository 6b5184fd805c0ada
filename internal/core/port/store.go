package port

import (
	"context"
	"time"

	"bazaar-ads/internal/core/domain"
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// CampaignFilter selects campaigns. Zero fields do not filter.
type CampaignFilter struct {
	VendorID  string
	ListingID string
	Statuses  []domain.CampaignStatus
	// EndsBefore selects campaigns whose end date is at or before the
	// given time.
	EndsBefore *time.Time
	Page       Page
}

// Reader is the read side of the store. Lookups of a missing record return
// the matching domain not-found error.
type Reader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListTransactions(ctx context.Context, userID string, page Page) ([]domain.Transaction, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, page Page) ([]domain.Listing, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	GetAdRates(ctx context.Context) (domain.AdRates, error)
	ListNotifications(ctx context.Context, userID string, page Page) ([]domain.Notification, error)
}

// Tx is a transactional view of the store. Writes made through a Tx are
// committed together when the function passed to Store.WithinTx returns
// nil and discarded otherwise.
type Tx interface {
	Reader

	// LockCampaign reads a campaign and holds it against concurrent
	// transitions until the transaction ends.
	LockCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	// LockActiveCampaign locks the active campaign of a listing. It
	// returns domain.ErrCampaignNotFound when the listing has none.
	LockActiveCampaign(ctx context.Context, listingID string) (*domain.Campaign, error)
	// HasOpenCampaign reports whether the listing has a campaign that is
	// pending, active or paused.
	HasOpenCampaign(ctx context.Context, listingID string) (bool, error)
	InsertCampaign(ctx context.Context, c *domain.Campaign) error
	UpdateCampaign(ctx context.Context, c *domain.Campaign) error

	// CreditWallet atomically adds amount to the user's balance, lowering
	// total spend when refundsSpend is set, and returns the new wallet.
	CreditWallet(ctx context.Context, userID string, amount int64, refundsSpend bool) (domain.Wallet, error)
	// DebitWallet atomically removes amount from the user's balance. It
	// fails with domain.ErrInsufficientFunds and changes nothing when the
	// balance is lower than amount.
	DebitWallet(ctx context.Context, userID string, amount int64) (domain.Wallet, error)
	AppendTransaction(ctx context.Context, t *domain.Transaction) error

	// SetListingPromoted writes the denormalised promoted flag. Only the
	// campaign lifecycle calls it.
	SetListingPromoted(ctx context.Context, listingID string, promoted bool) error

	InsertNotification(ctx context.Context, n *domain.Notification) error
}

// Store is the persistence port of the service.
type Store interface {
	Reader

	// WithinTx runs fn in a single all-or-nothing unit of work.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// EnsureUser creates the user with an empty wallet unless it exists
	// and returns the stored record.
	EnsureUser(ctx context.Context, u *domain.User) (*domain.User, error)
	SetPushToken(ctx context.Context, userID, token string) error
	CreateListing(ctx context.Context, l *domain.Listing) error
	IncrementListingViews(ctx context.Context, listingID string) error
	PutAdRates(ctx context.Context, rates domain.AdRates) error

	NotificationOutbox
}

// NotificationOutbox hands stored notifications to the push relay.
type NotificationOutbox interface {
	PendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkNotificationsDelivered(ctx context.Context, ids []string, at time.Time) error
}

package memory

import (
	"context"
	"fmt"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// tx implements port.Tx on the working copy of a transaction.
type tx struct {
	*state
}

func (t *tx) LockCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return t.GetCampaign(ctx, id)
}

func (t *tx) LockActiveCampaign(_ context.Context, listingID string) (*domain.Campaign, error) {
	for _, id := range t.campaignIDs {
		c := t.campaigns[id]
		if c.ListingID == listingID && c.Status == domain.StatusActive {
			return &c, nil
		}
	}
	return nil, domain.ErrCampaignNotFound
}

func (t *tx) HasOpenCampaign(_ context.Context, listingID string) (bool, error) {
	for _, c := range t.campaigns {
		if c.ListingID == listingID && c.Status.Open() {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertCampaign(_ context.Context, c *domain.Campaign) error {
	if _, ok := t.campaigns[c.ID]; ok {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	if err := t.checkSingleActive(c); err != nil {
		return err
	}
	t.campaigns[c.ID] = *c
	t.campaignIDs = append(t.campaignIDs, c.ID)
	return nil
}

func (t *tx) UpdateCampaign(_ context.Context, c *domain.Campaign) error {
	if _, ok := t.campaigns[c.ID]; !ok {
		return domain.ErrCampaignNotFound
	}
	if err := t.checkSingleActive(c); err != nil {
		return err
	}
	t.campaigns[c.ID] = *c
	return nil
}

// checkSingleActive mirrors the partial unique index of the SQL schema.
func (t *tx) checkSingleActive(c *domain.Campaign) error {
	if c.Status != domain.StatusActive {
		return nil
	}
	for id, other := range t.campaigns {
		if id != c.ID && other.ListingID == c.ListingID && other.Status == domain.StatusActive {
			return domain.ErrListingAlreadyPromoted
		}
	}
	return nil
}

func (t *tx) CreditWallet(_ context.Context, userID string, amount int64, refundsSpend bool) (domain.Wallet, error) {
	u, ok := t.users[userID]
	if !ok {
		return domain.Wallet{}, domain.ErrUserNotFound
	}
	if err := u.Wallet.Credit(amount, refundsSpend); err != nil {
		return domain.Wallet{}, err
	}
	t.users[userID] = u
	return u.Wallet, nil
}

func (t *tx) DebitWallet(_ context.Context, userID string, amount int64) (domain.Wallet, error) {
	u, ok := t.users[userID]
	if !ok {
		return domain.Wallet{}, domain.ErrUserNotFound
	}
	if err := u.Wallet.Debit(amount); err != nil {
		return domain.Wallet{}, err
	}
	t.users[userID] = u
	return u.Wallet, nil
}

func (t *tx) AppendTransaction(_ context.Context, tr *domain.Transaction) error {
	if _, ok := t.users[tr.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, existing := range t.transactions[tr.UserID] {
		if existing.ID == tr.ID {
			return fmt.Errorf("transaction %s already exists", tr.ID)
		}
	}
	t.transactions[tr.UserID] = append(t.transactions[tr.UserID], *tr)
	return nil
}

func (t *tx) SetListingPromoted(_ context.Context, listingID string, promoted bool) error {
	l, ok := t.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	l.IsPromoted = promoted
	t.listings[listingID] = l
	return nil
}

func (t *tx) InsertNotification(_ context.Context, n *domain.Notification) error {
	t.notifications = append(t.notifications, *n)
	return nil
}

var (
	_ port.Tx    = (*tx)(nil)
	_ port.Store = (*Store)(nil)
)

package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bazaar-ads/internal/adapter/memory"
	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

var (
	t0     = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	vendor = domain.Actor{UserID: "vendor", Verified: true}
	rival  = domain.Actor{UserID: "rival", Verified: true}
	admin  = domain.Actor{UserID: "admin", Verified: true, Admin: true}
)

const startingBalance int64 = 5000

type fixture struct {
	store     *memory.Store
	ledger    *LedgerUseCase
	campaigns *CampaignUseCase
	pricing   *PricingUseCase
	listings  *ListingUseCase
	now       time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, publisher port.ChangePublisher) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	logger := discardLogger()

	f := &fixture{store: store, now: t0}
	clock := func() time.Time { return f.now }

	f.pricing = NewPricingUseCase(store, logger)
	f.ledger = NewLedgerUseCase(store, publisher, logger)
	f.ledger.now = clock
	f.campaigns = NewCampaignUseCase(store, f.pricing, publisher, logger)
	f.campaigns.now = clock
	f.listings = NewListingUseCase(store)
	f.listings.now = clock

	for _, u := range []domain.User{
		{ID: vendor.UserID, Role: domain.RoleVendor, Wallet: domain.Wallet{Balance: startingBalance}},
		{ID: rival.UserID, Role: domain.RoleVendor, Wallet: domain.Wallet{Balance: startingBalance}},
		{ID: admin.UserID, Role: domain.RoleAdmin},
	} {
		_, err := store.EnsureUser(ctx, &u)
		require.NoError(t, err)
	}
	for _, l := range []domain.Listing{
		{ID: "l1", VendorID: vendor.UserID, Title: "Honda Civic 2019", ImageURL: "https://img/1.jpg"},
		{ID: "l2", VendorID: vendor.UserID, Title: "Sofa set"},
		{ID: "l3", VendorID: rival.UserID, Title: "iPhone 13"},
	} {
		require.NoError(t, store.CreateListing(ctx, &l))
	}
	return f
}

func (f *fixture) wallet(t *testing.T, userID string) domain.Wallet {
	t.Helper()
	u, err := f.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u.Wallet
}

func (f *fixture) history(t *testing.T, userID string) []domain.Transaction {
	t.Helper()
	h, err := f.store.ListTransactions(context.Background(), userID, port.Page{Limit: 200})
	require.NoError(t, err)
	return h
}

func (f *fixture) listing(t *testing.T, id string) *domain.Listing {
	t.Helper()
	l, err := f.store.GetListing(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) submit(t *testing.T, listingID string, typ domain.CampaignType, days int) *domain.Campaign {
	t.Helper()
	c, err := f.campaigns.Submit(context.Background(), vendor, domain.CampaignRequest{
		ListingID:    listingID,
		Type:         typ,
		DurationDays: days,
	})
	require.NoError(t, err)
	return c
}

func signedSum(history []domain.Transaction) int64 {
	var sum int64
	for _, tr := range history {
		sum += tr.Signed()
	}
	return sum
}

package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// Demo accounts created by Seed.
const (
	SeedAdminID  = "admin-1"
	SeedVendorID = "vendor-1"
)

var seedTitles = []string{
	"Honda CD 70 2021 model",
	"Samsung Galaxy S23 Ultra",
	"3 bed apartment DHA Phase 6",
	"Mountain bike 21 gears",
	"Dining table with 6 chairs",
	"Toyota Corolla GLi 2018",
	"Gaming laptop RTX 4060",
	"Persian kitten, 3 months",
}

var seedCities = []string{"Lahore", "Karachi", "Islamabad", "Rawalpindi", "Faisalabad"}

// Seed fills store with demo users, listings and a starting deposit for
// the vendor. It works against any port.Store, so the in-memory store can
// be seeded for local runs as well. A store where the demo vendor already
// owns transactions or listings is left alone and Seed reports false.
func Seed(ctx context.Context, store port.Store) (bool, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	users := []domain.User{
		{ID: SeedAdminID, Email: "admin@bazaar.local", Role: domain.RoleAdmin, CreatedAt: now},
		{ID: SeedVendorID, Email: "vendor@bazaar.local", Role: domain.RoleVendor, CreatedAt: now},
	}
	for i := range users {
		if _, err := store.EnsureUser(ctx, &users[i]); err != nil {
			return false, fmt.Errorf("seed user %s: %w", users[i].ID, err)
		}
	}

	seeded, err := alreadySeeded(ctx, store)
	if err != nil || seeded {
		return false, err
	}

	for i, title := range seedTitles {
		l := &domain.Listing{
			ID:        uuid.NewString(),
			VendorID:  SeedVendorID,
			Title:     title,
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/640/480", i+1),
			Location:  seedCities[r.Intn(len(seedCities))],
			Price:     int64(5000 + r.Intn(500)*1000),
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		}
		if err := store.CreateListing(ctx, l); err != nil {
			return false, fmt.Errorf("seed listing: %w", err)
		}
	}

	if err := store.PutAdRates(ctx, domain.DefaultAdRates()); err != nil {
		return false, fmt.Errorf("seed rates: %w", err)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		w, err := tx.CreditWallet(ctx, SeedVendorID, 10000, false)
		if err != nil {
			return err
		}
		return tx.AppendTransaction(ctx, &domain.Transaction{
			ID:           uuid.NewString(),
			UserID:       SeedVendorID,
			Type:         domain.TransactionDeposit,
			Amount:       10000,
			BalanceAfter: w.Balance,
			Date:         now,
			Status:       domain.TransactionCompleted,
			Description:  "Welcome deposit",
		})
	})
	if err != nil {
		return false, fmt.Errorf("seed deposit: %w", err)
	}
	return true, nil
}

func alreadySeeded(ctx context.Context, store port.Store) (bool, error) {
	history, err := store.ListTransactions(ctx, SeedVendorID, port.Page{Limit: 1})
	if err != nil {
		return false, fmt.Errorf("seed check transactions: %w", err)
	}
	if len(history) > 0 {
		return true, nil
	}
	listings, err := store.ListListings(ctx, port.Page{Limit: 100})
	if err != nil {
		return false, fmt.Errorf("seed check listings: %w", err)
	}
	for _, l := range listings {
		if l.VendorID == SeedVendorID {
			return true, nil
		}
	}
	return false, nil
}

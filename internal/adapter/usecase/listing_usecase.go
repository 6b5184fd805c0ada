package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// ListingUseCase serves listings. It never writes the promoted flag.
type ListingUseCase struct {
	store port.Store
	now   func() time.Time
}

// NewListingUseCase returns a ListingUseCase backed by store.
func NewListingUseCase(store port.Store) *ListingUseCase {
	return &ListingUseCase{store: store, now: time.Now}
}

// Create stores a new listing owned by the actor.
func (u *ListingUseCase) Create(ctx context.Context, actor domain.Actor, l domain.Listing) (*domain.Listing, error) {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return nil, fmt.Errorf("create listing: %w: title is required", domain.ErrInvalidListing)
	}
	if l.Price < 0 {
		return nil, fmt.Errorf("create listing: %w: price must not be negative", domain.ErrInvalidListing)
	}
	l.ID = uuid.NewString()
	l.VendorID = actor.UserID
	l.IsPromoted = false
	l.Views = 0
	l.CreatedAt = u.now().UTC()
	if err := u.store.CreateListing(ctx, &l); err != nil {
		return nil, wrap("create listing", err)
	}
	return &l, nil
}

// Get returns a listing by id.
func (u *ListingUseCase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := u.store.GetListing(ctx, id)
	return l, wrap("get listing", err)
}

// List returns promoted listings first, then the newest.
func (u *ListingUseCase) List(ctx context.Context, page port.Page) ([]domain.Listing, error) {
	out, err := u.store.ListListings(ctx, page.Normalize())
	return out, wrap("list listings", err)
}

// RecordView increments the listing view counter.
func (u *ListingUseCase) RecordView(ctx context.Context, id string) error {
	return wrap("record view", u.store.IncrementListingViews(ctx, id))
}

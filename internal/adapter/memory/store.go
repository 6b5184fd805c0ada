// Package memory keeps the whole store in process memory. A transaction
// works on a copy of the state that replaces the live state only when the
// transaction function succeeds, so partial writes are never visible.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// Store implements port.Store. Transactions are serialised by a single
// mutex.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty store that serves the default rate table.
func NewStore() *Store {
	return &Store{state: newState()}
}

type state struct {
	users         map[string]domain.User
	transactions  map[string][]domain.Transaction
	listings      map[string]domain.Listing
	listingIDs    []string
	campaigns     map[string]domain.Campaign
	campaignIDs   []string
	rates         domain.AdRates
	notifications []domain.Notification
}

func newState() *state {
	return &state{
		users:        make(map[string]domain.User),
		transactions: make(map[string][]domain.Transaction),
		listings:     make(map[string]domain.Listing),
		campaigns:    make(map[string]domain.Campaign),
		rates:        domain.DefaultAdRates(),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[string]domain.User, len(s.users)),
		transactions:  make(map[string][]domain.Transaction, len(s.transactions)),
		listings:      make(map[string]domain.Listing, len(s.listings)),
		listingIDs:    slices.Clone(s.listingIDs),
		campaigns:     make(map[string]domain.Campaign, len(s.campaigns)),
		campaignIDs:   slices.Clone(s.campaignIDs),
		rates:         make(domain.AdRates, len(s.rates)),
		notifications: slices.Clone(s.notifications),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = slices.Clone(v)
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range s.rates {
		c.rates[k] = v
	}
	return c
}

// WithinTx runs fn against a private copy of the state and publishes the
// copy when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &tx{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) read() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// The live state is replaced, never mutated, once a transaction commits,
// so a reader may keep using the pointer it obtained.

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.read().GetUser(ctx, id)
}

func (s *Store) ListTransactions(ctx context.Context, userID string, page port.Page) ([]domain.Transaction, error) {
	return s.read().ListTransactions(ctx, userID, page)
}

func (s *Store) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.read().GetListing(ctx, id)
}

func (s *Store) ListListings(ctx context.Context, page port.Page) ([]domain.Listing, error) {
	return s.read().ListListings(ctx, page)
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.read().GetCampaign(ctx, id)
}

func (s *Store) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	return s.read().ListCampaigns(ctx, filter)
}

func (s *Store) GetAdRates(ctx context.Context) (domain.AdRates, error) {
	return s.read().GetAdRates(ctx)
}

func (s *Store) ListNotifications(ctx context.Context, userID string, page port.Page) ([]domain.Notification, error) {
	return s.read().ListNotifications(ctx, userID, page)
}

// mutate applies fn to a copy of the state, like a one-statement
// transaction.
func (s *Store) mutate(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) EnsureUser(_ context.Context, u *domain.User) (*domain.User, error) {
	var out domain.User
	err := s.mutate(func(st *state) error {
		if existing, ok := st.users[u.ID]; ok {
			out = existing
			return nil
		}
		st.users[u.ID] = *u
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) SetPushToken(_ context.Context, userID, token string) error {
	return s.mutate(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.PushToken = token
		st.users[userID] = u
		return nil
	})
}

func (s *Store) CreateListing(_ context.Context, l *domain.Listing) error {
	return s.mutate(func(st *state) error {
		if _, ok := st.listings[l.ID]; ok {
			return fmt.Errorf("listing %s already exists", l.ID)
		}
		st.listings[l.ID] = *l
		st.listingIDs = append(st.listingIDs, l.ID)
		return nil
	})
}

func (s *Store) IncrementListingViews(_ context.Context, listingID string) error {
	return s.mutate(func(st *state) error {
		l, ok := st.listings[listingID]
		if !ok {
			return domain.ErrListingNotFound
		}
		l.Views++
		st.listings[listingID] = l
		return nil
	})
}

func (s *Store) PutAdRates(_ context.Context, rates domain.AdRates) error {
	return s.mutate(func(st *state) error {
		for t, v := range rates {
			st.rates[t] = v
		}
		return nil
	})
}

func (s *Store) PendingNotifications(_ context.Context, limit int) ([]domain.Notification, error) {
	st := s.read()
	var out []domain.Notification
	for _, n := range st.notifications {
		if n.DeliveredAt != nil {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkNotificationsDelivered(_ context.Context, ids []string, at time.Time) error {
	return s.mutate(func(st *state) error {
		for i := range st.notifications {
			if slices.Contains(ids, st.notifications[i].ID) && st.notifications[i].DeliveredAt == nil {
				delivered := at
				st.notifications[i].DeliveredAt = &delivered
			}
		}
		return nil
	})
}

// state doubles as the Reader of both Store and tx.

func (s *state) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *state) ListTransactions(_ context.Context, userID string, page port.Page) ([]domain.Transaction, error) {
	history := s.transactions[userID]
	out := make([]domain.Transaction, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	return paginate(out, page), nil
}

func (s *state) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

func (s *state) ListListings(_ context.Context, page port.Page) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(s.listingIDs))
	for i := len(s.listingIDs) - 1; i >= 0; i-- {
		out = append(out, s.listings[s.listingIDs[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPromoted && !out[j].IsPromoted
	})
	return paginate(out, page), nil
}

func (s *state) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &c, nil
}

func (s *state) ListCampaigns(_ context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	var out []domain.Campaign
	for i := len(s.campaignIDs) - 1; i >= 0; i-- {
		c := s.campaigns[s.campaignIDs[i]]
		if filter.VendorID != "" && c.VendorID != filter.VendorID {
			continue
		}
		if filter.ListingID != "" && c.ListingID != filter.ListingID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, c.Status) {
			continue
		}
		if filter.EndsBefore != nil && (c.EndDate == nil || c.EndDate.After(*filter.EndsBefore)) {
			continue
		}
		out = append(out, c)
	}
	if filter.Page.Limit == 0 {
		return out, nil
	}
	return paginate(out, filter.Page), nil
}

func (s *state) GetAdRates(_ context.Context) (domain.AdRates, error) {
	out := make(domain.AdRates, len(s.rates))
	for t, v := range s.rates {
		out[t] = v
	}
	return out, nil
}

func (s *state) ListNotifications(_ context.Context, userID string, page port.Page) ([]domain.Notification, error) {
	var out []domain.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	return paginate(out, page), nil
}

func paginate[T any](items []T, page port.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := min(len(items), page.Offset+page.Limit)
	return items[page.Offset:end]
}

package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar-ads/internal/adapter/memory"
	"bazaar-ads/internal/adapter/usecase"
	"bazaar-ads/internal/core/domain"
)

type caller struct {
	id       string
	verified bool
	admin    bool
}

var (
	vendor = caller{id: "vendor-1", verified: true}
	rookie = caller{id: "vendor-2"}
	admin  = caller{id: "admin-1", verified: true, admin: true}
)

type fixture struct {
	t     *testing.T
	store *memory.Store
	srv   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	feed := memory.NewBroadcaster()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pricing := usecase.NewPricingUseCase(store, logger)

	h := NewHandler(Services{
		Ledger:    usecase.NewLedgerUseCase(store, feed, logger),
		Campaigns: usecase.NewCampaignUseCase(store, pricing, feed, logger),
		Listings:  usecase.NewListingUseCase(store),
		Pricing:   pricing,
		Feed:      feed,
	}, logger)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	return &fixture{t: t, store: store, srv: srv}
}

func (c caller) apply(req *http.Request) {
	if c.id == "" {
		return
	}
	req.Header.Set(HeaderUserID, c.id)
	req.Header.Set(HeaderVerified, fmt.Sprint(c.verified))
	if c.admin {
		req.Header.Set(HeaderRole, "admin")
	} else {
		req.Header.Set(HeaderRole, "vendor")
	}
}

// do sends a request and decodes a JSON answer into out when out is not
// nil. It returns the status code.
func (f *fixture) do(who caller, method, path string, body any, out any) int {
	f.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(f.t, err)
	who.apply(req)

	resp, err := f.srv.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

// vendorWithListing registers the vendor, funds the wallet and creates a
// listing. It returns the listing id.
func (f *fixture) vendorWithListing(balance int64) string {
	f.t.Helper()
	require.Equal(f.t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/me", registerRequest{Email: "v@bazaar.local"}, nil))
	require.Equal(f.t, http.StatusOK, f.do(admin, http.MethodPost, "/api/v1/me", nil, nil))
	if balance > 0 {
		require.Equal(f.t, http.StatusCreated, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
			fundsRequest{Type: domain.TransactionDeposit, Amount: balance}, nil))
	}
	var l domain.Listing
	require.Equal(f.t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/listings",
		listingRequest{Title: "Honda CD 70 2021 model", Location: "Lahore", Price: 150000}, &l))
	return l.ID
}

func TestIdentityRequired(t *testing.T) {
	f := newFixture(t)

	var body errorResponse
	assert.Equal(t, http.StatusUnauthorized, f.do(caller{}, http.MethodGet, "/api/v1/wallet", nil, &body))
	assert.Contains(t, body.Error, HeaderUserID)

	// Public routes work without identity.
	assert.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/listings", nil, nil))
	assert.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/health", nil, nil))
}

func TestWalletFlow(t *testing.T) {
	f := newFixture(t)
	f.vendorWithListing(1000)

	var w domain.Wallet
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/wallet", nil, &w))
	assert.Equal(t, int64(1000), w.Balance)

	var penalty domain.Transaction
	require.Equal(t, http.StatusCreated, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: domain.TransactionPenalty, Amount: 300, Description: "Late delivery"}, &penalty))
	assert.Equal(t, int64(700), penalty.BalanceAfter)
	assert.Equal(t, int64(-300), penalty.Signed())

	var history []domain.Transaction
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/wallet/transactions?limit=10", nil, &history))
	require.Len(t, history, 2)
	assert.Equal(t, domain.TransactionPenalty, history[0].Type)
	assert.Equal(t, domain.TransactionDeposit, history[1].Type)

	var body errorResponse
	assert.Equal(t, http.StatusPaymentRequired, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: domain.TransactionPenalty, Amount: 701}, &body))
	assert.Equal(t, http.StatusBadRequest, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: domain.TransactionDeposit, Amount: 0}, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: "gift", Amount: 10}, nil))
	assert.Equal(t, http.StatusForbidden, f.do(vendor, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: domain.TransactionDeposit, Amount: 10}, nil))
	assert.Equal(t, http.StatusNotFound, f.do(admin, http.MethodPost, "/api/v1/admin/users/nobody/funds",
		fundsRequest{Type: domain.TransactionDeposit, Amount: 10}, nil))

	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/wallet", nil, &w))
	assert.Equal(t, int64(700), w.Balance)
}

func TestCampaignLifecycle(t *testing.T) {
	f := newFixture(t)
	listingID := f.vendorWithListing(1000)

	req := domain.CampaignRequest{ListingID: listingID, Type: domain.CampaignFeaturedListing, DurationDays: 5}

	assert.Equal(t, http.StatusForbidden, f.do(caller{id: vendor.id}, http.MethodPost, "/api/v1/campaigns", req, nil))

	var c domain.Campaign
	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/campaigns", req, &c))
	assert.Equal(t, domain.StatusPendingApproval, c.Status)
	assert.Equal(t, int64(500), c.TotalCost)
	assert.Equal(t, domain.DefaultTargetLocation, c.TargetLocation)

	assert.Equal(t, http.StatusConflict, f.do(vendor, http.MethodPost, "/api/v1/campaigns", req, nil))
	assert.Equal(t, http.StatusForbidden, f.do(vendor, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/approve", nil, nil))

	require.Equal(t, http.StatusOK, f.do(admin, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/approve", nil, &c))
	assert.Equal(t, domain.StatusActive, c.Status)
	require.NotNil(t, c.EndDate)

	var l domain.Listing
	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/listings/"+listingID, nil, &l))
	assert.True(t, l.IsPromoted)

	assert.Equal(t, http.StatusConflict, f.do(admin, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/approve", nil, nil))

	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/pause", nil, &c))
	assert.Equal(t, domain.StatusPaused, c.Status)
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/resume", nil, &c))
	assert.Equal(t, domain.StatusActive, c.Status)

	var stopped stopResponse
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/stop", nil, &stopped))
	assert.Equal(t, domain.StatusCompleted, stopped.Campaign.Status)
	assert.Equal(t, int64(400), stopped.Refund)

	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/listings/"+listingID, nil, &l))
	assert.False(t, l.IsPromoted)

	var w domain.Wallet
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/wallet", nil, &w))
	assert.Equal(t, int64(900), w.Balance)
	assert.Equal(t, int64(100), w.TotalSpend)

	var notes []domain.Notification
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/me/notifications", nil, &notes))
	// A vendor stopping their own campaign is not notified about it.
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationAdApproved, notes[0].Kind)
}

func TestRejectAndCancel(t *testing.T) {
	f := newFixture(t)
	listingID := f.vendorWithListing(2000)
	req := domain.CampaignRequest{ListingID: listingID, Type: domain.CampaignBannerAd, DurationDays: 2}

	var c domain.Campaign
	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/campaigns", req, &c))
	require.Equal(t, http.StatusOK, f.do(admin, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/reject",
		rejectRequest{Reason: "Blurry photo"}, &c))
	assert.Equal(t, domain.StatusRejected, c.Status)
	assert.Equal(t, "Blurry photo", c.StatusReason)

	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/campaigns", req, &c))
	assert.Equal(t, http.StatusForbidden, f.do(rookie, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/cancel", nil, nil))
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/cancel", nil, &c))
	assert.Equal(t, "Cancelled", c.StatusReason)

	var w domain.Wallet
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/wallet", nil, &w))
	assert.Equal(t, int64(2000), w.Balance)
	assert.Equal(t, int64(0), w.TotalSpend)

	var list []domain.Campaign
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/campaigns?status=rejected", nil, &list))
	assert.Len(t, list, 2)
	require.Equal(t, http.StatusOK, f.do(rookie, http.MethodGet, "/api/v1/campaigns", nil, &list))
	assert.Empty(t, list)

	assert.Equal(t, http.StatusForbidden, f.do(rookie, http.MethodGet, "/api/v1/campaigns/"+c.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, f.do(vendor, http.MethodGet, "/api/v1/campaigns/missing", nil, nil))
}

func TestSubmitWithoutFunds(t *testing.T) {
	f := newFixture(t)
	listingID := f.vendorWithListing(0)

	var body errorResponse
	status := f.do(vendor, http.MethodPost, "/api/v1/campaigns",
		domain.CampaignRequest{ListingID: listingID, Type: domain.CampaignSocialBoost, DurationDays: 3}, &body)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.NotEmpty(t, body.Error)

	assert.Equal(t, http.StatusBadRequest, f.do(vendor, http.MethodPost, "/api/v1/campaigns",
		domain.CampaignRequest{ListingID: listingID, Type: domain.CampaignSocialBoost, DurationDays: 0}, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(vendor, http.MethodPost, "/api/v1/campaigns",
		map[string]any{"listingId": listingID, "bogus": true}, nil))
}

func TestTrackingAndOverview(t *testing.T) {
	f := newFixture(t)
	listingID := f.vendorWithListing(1000)

	// Counters on a listing without a campaign are accepted and ignored.
	assert.Equal(t, http.StatusNoContent, f.do(caller{}, http.MethodPost, "/api/v1/listings/"+listingID+"/impressions", nil, nil))
	assert.Equal(t, http.StatusNoContent, f.do(caller{}, http.MethodPost, "/api/v1/listings/missing/views", nil, nil))

	var c domain.Campaign
	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/campaigns",
		domain.CampaignRequest{ListingID: listingID, Type: domain.CampaignFeaturedListing, DurationDays: 4}, &c))
	require.Equal(t, http.StatusOK, f.do(admin, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/approve", nil, nil))

	for range 4 {
		require.Equal(t, http.StatusNoContent, f.do(caller{}, http.MethodPost, "/api/v1/listings/"+listingID+"/impressions", nil, nil))
	}
	require.Equal(t, http.StatusNoContent, f.do(caller{}, http.MethodPost, "/api/v1/listings/"+listingID+"/views", nil, nil))
	require.Equal(t, http.StatusNoContent, f.do(caller{}, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/conversions", nil, nil))

	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodGet, "/api/v1/campaigns/"+c.ID, nil, &c))
	assert.Equal(t, int64(4), c.Metrics.Impressions)
	assert.Equal(t, int64(1), c.Metrics.Clicks)
	assert.Equal(t, 25.0, c.Metrics.CTR)
	assert.Equal(t, 400.0, c.Metrics.CPC)
	assert.Equal(t, int64(1), c.Metrics.Conversions)

	var l domain.Listing
	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/listings/"+listingID, nil, &l))
	assert.Equal(t, int64(1), l.Views)

	assert.Equal(t, http.StatusForbidden, f.do(vendor, http.MethodGet, "/api/v1/admin/overview", nil, nil))
	var o domain.Overview
	require.Equal(t, http.StatusOK, f.do(admin, http.MethodGet, "/api/v1/admin/overview", nil, &o))
	assert.Equal(t, int64(400), o.TotalRevenue)
	assert.Equal(t, int64(1), o.ByStatus[domain.StatusActive])
	assert.Equal(t, int64(4), o.Impressions)
}

func TestRates(t *testing.T) {
	f := newFixture(t)

	var rates domain.AdRates
	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/rates", nil, &rates))
	assert.Equal(t, domain.DefaultAdRates(), rates)

	var q quoteResponse
	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/rates/quote?type=banner_ad&days=3", nil, &q))
	assert.Equal(t, quoteResponse{Type: domain.CampaignBannerAd, DurationDays: 3, CostPerDay: 500, TotalCost: 1500}, q)

	assert.Equal(t, http.StatusBadRequest, f.do(caller{}, http.MethodGet, "/api/v1/rates/quote?type=banner_ad&days=x", nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(caller{}, http.MethodGet, "/api/v1/rates/quote?type=billboard&days=3", nil, nil))

	update := domain.AdRates{domain.CampaignBannerAd: 650}
	assert.Equal(t, http.StatusForbidden, f.do(vendor, http.MethodPut, "/api/v1/admin/rates", update, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(admin, http.MethodPut, "/api/v1/admin/rates", domain.AdRates{domain.CampaignBannerAd: 0}, nil))
	require.Equal(t, http.StatusOK, f.do(admin, http.MethodPut, "/api/v1/admin/rates", update, &rates))
	assert.Equal(t, int64(650), rates[domain.CampaignBannerAd])
	assert.Equal(t, int64(100), rates[domain.CampaignFeaturedListing])
}

func TestListingsPromotedFirst(t *testing.T) {
	f := newFixture(t)
	promoted := f.vendorWithListing(1000)

	var other domain.Listing
	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/listings",
		listingRequest{Title: "Dining table", Price: 30000}, &other))
	assert.False(t, other.IsPromoted)
	assert.Equal(t, http.StatusBadRequest, f.do(vendor, http.MethodPost, "/api/v1/listings", listingRequest{Title: "  "}, nil))

	var c domain.Campaign
	require.Equal(t, http.StatusCreated, f.do(vendor, http.MethodPost, "/api/v1/campaigns",
		domain.CampaignRequest{ListingID: promoted, Type: domain.CampaignFeaturedListing, DurationDays: 1}, &c))
	require.Equal(t, http.StatusOK, f.do(admin, http.MethodPost, "/api/v1/admin/campaigns/"+c.ID+"/approve", nil, nil))

	var feed []domain.Listing
	require.Equal(t, http.StatusOK, f.do(caller{}, http.MethodGet, "/api/v1/listings", nil, &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, promoted, feed[0].ID)
	assert.Equal(t, other.ID, feed[1].ID)
}

func TestRegisterIsIdempotent(t *testing.T) {
	f := newFixture(t)

	var first, second domain.User
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/me", registerRequest{Email: "a@b.c"}, &first))
	require.Equal(t, http.StatusOK, f.do(vendor, http.MethodPost, "/api/v1/me", registerRequest{Email: "other@b.c"}, &second))
	assert.Equal(t, "a@b.c", second.Email)
	assert.Equal(t, domain.RoleVendor, second.Role)

	assert.Equal(t, http.StatusNoContent, f.do(vendor, http.MethodPut, "/api/v1/me/push-token", pushTokenRequest{Token: "tok"}, nil))
	assert.Equal(t, http.StatusNotFound, f.do(rookie, http.MethodPut, "/api/v1/me/push-token", pushTokenRequest{Token: "tok"}, nil))
}

func TestLiveFeed(t *testing.T) {
	f := newFixture(t)
	f.vendorWithListing(0)

	header := http.Header{}
	header.Set(HeaderUserID, vendor.id)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/v1/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Equal(t, http.StatusCreated, f.do(admin, http.MethodPost, "/api/v1/admin/users/"+vendor.id+"/funds",
		fundsRequest{Type: domain.TransactionBonus, Amount: 50}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev domain.ChangeEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.ChangeWallet, ev.Kind)
	assert.Equal(t, vendor.id, ev.UserID)
}

func TestLiveFeedRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/v1/live"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVisible(t *testing.T) {
	ev := domain.ChangeEvent{Kind: domain.ChangeCampaign, ID: "c1", UserID: "u1"}
	assert.True(t, visible(domain.Actor{UserID: "u1"}, ev))
	assert.False(t, visible(domain.Actor{UserID: "u2"}, ev))
	assert.True(t, visible(domain.Actor{UserID: "u2", Admin: true}, ev))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrInvalidCampaign, http.StatusBadRequest},
		{domain.ErrInvalidTransactionType, http.StatusBadRequest},
		{domain.ErrInvalidListing, http.StatusBadRequest},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrCampaignNotFound, http.StatusNotFound},
		{fmt.Errorf("approve: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{domain.ErrListingAlreadyPromoted, http.StatusConflict},
		{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
		{fmt.Errorf("op: %w: %w", domain.ErrRemoteFailure, errors.New("conn reset")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(caller{}, http.MethodGet, "/health", nil, nil)

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bazaar_http_requests_total")
}

package postgres

import (
	"github.com/jackc/pgx/v5"

	"bazaar-ads/internal/core/domain"
)

const (
	userColumns = `id, email, role, balance, total_spend, pending_deposit, pending_withdrawal, push_token, created_at`

	transactionColumns = `id, user_id, type, amount, balance_after, created_at, status, description, campaign_id`

	listingColumns = `id, vendor_id, title, image_url, location, price, is_promoted, views, created_at`

	campaignColumns = `id, vendor_id, listing_id, listing_title, listing_image, type, duration_days, total_cost,
target_location, goal, priority, status, status_reason, start_date, end_date,
impressions, clicks, ctr, cpc, conversions, created_at, updated_at`

	notificationColumns = `id, user_id, kind, title, body, campaign_id, created_at, delivered_at`
)

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Role,
		&u.Wallet.Balance,
		&u.Wallet.TotalSpend,
		&u.Wallet.PendingDeposit,
		&u.Wallet.PendingWithdrawal,
		&u.PushToken,
		&u.CreatedAt,
	)
	return u, err
}

func scanTransaction(row pgx.CollectableRow) (domain.Transaction, error) {
	var (
		t          domain.Transaction
		campaignID *string
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.BalanceAfter,
		&t.Date,
		&t.Status,
		&t.Description,
		&campaignID,
	)
	if campaignID != nil {
		t.CampaignID = *campaignID
	}
	return t, err
}

func scanListing(row pgx.CollectableRow) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID,
		&l.VendorID,
		&l.Title,
		&l.ImageURL,
		&l.Location,
		&l.Price,
		&l.IsPromoted,
		&l.Views,
		&l.CreatedAt,
	)
	return l, err
}

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.VendorID,
		&c.ListingID,
		&c.ListingTitle,
		&c.ListingImage,
		&c.Type,
		&c.DurationDays,
		&c.TotalCost,
		&c.TargetLocation,
		&c.Goal,
		&c.Priority,
		&c.Status,
		&c.StatusReason,
		&c.StartDate,
		&c.EndDate,
		&c.Metrics.Impressions,
		&c.Metrics.Clicks,
		&c.Metrics.CTR,
		&c.Metrics.CPC,
		&c.Metrics.Conversions,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func scanNotification(row pgx.CollectableRow) (domain.Notification, error) {
	var (
		n          domain.Notification
		campaignID *string
	)
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Kind,
		&n.Title,
		&n.Body,
		&campaignID,
		&n.CreatedAt,
		&n.DeliveredAt,
	)
	if campaignID != nil {
		n.CampaignID = *campaignID
	}
	return n, err
}

// nullable stores an empty string as NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

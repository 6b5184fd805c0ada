package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// reader implements port.Reader on top of a pool or a transaction.
type reader struct {
	q querier
}

func (r reader) GetUser(ctx context.Context, id string) (*domain.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r reader) ListTransactions(ctx context.Context, userID string, page port.Page) ([]domain.Transaction, error) {
	rows, err := r.q.Query(ctx, `SELECT `+transactionColumns+`
FROM wallet_transactions
WHERE user_id = $1
ORDER BY seq DESC
LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTransaction)
}

func (r reader) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	rows, err := r.q.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	l, err := pgx.CollectExactlyOneRow(rows, scanListing)
	if err != nil {
		return nil, notFound(err, domain.ErrListingNotFound)
	}
	return &l, nil
}

// ListListings returns promoted listings first, then the newest.
func (r reader) ListListings(ctx context.Context, page port.Page) ([]domain.Listing, error) {
	rows, err := r.q.Query(ctx, `SELECT `+listingColumns+`
FROM listings
ORDER BY is_promoted DESC, created_at DESC, seq DESC
LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanListing)
}

func (r reader) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return r.oneCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
}

func (r reader) oneCampaign(ctx context.Context, query string, args ...any) (*domain.Campaign, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCampaign)
	if err != nil {
		return nil, notFound(err, domain.ErrCampaignNotFound)
	}
	return &c, nil
}

// ListCampaigns returns the matching campaigns, newest first. A zero page
// limit returns every match.
func (r reader) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.VendorID != "" {
		where = append(where, "vendor_id = "+arg(filter.VendorID))
	}
	if filter.ListingID != "" {
		where = append(where, "listing_id = "+arg(filter.ListingID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if filter.EndsBefore != nil {
		where = append(where, "end_date <= "+arg(*filter.EndsBefore))
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if filter.Page.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.Page.Limit), arg(filter.Page.Offset))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

func (r reader) GetAdRates(ctx context.Context) (domain.AdRates, error) {
	rows, err := r.q.Query(ctx, `SELECT campaign_type, cost_per_day FROM ad_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := domain.AdRates{}
	for rows.Next() {
		var (
			t    domain.CampaignType
			cost int64
		)
		if err = rows.Scan(&t, &cost); err != nil {
			return nil, err
		}
		rates[t] = cost
	}
	return rates, rows.Err()
}

func (r reader) ListNotifications(ctx context.Context, userID string, page port.Page) ([]domain.Notification, error) {
	rows, err := r.q.Query(ctx, `SELECT `+notificationColumns+`
FROM notifications
WHERE user_id = $1
ORDER BY seq DESC
LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanNotification)
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// pgTx implements port.Tx inside a serializable transaction.
type pgTx struct {
	reader
}

func (t *pgTx) LockCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return t.oneCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) LockActiveCampaign(ctx context.Context, listingID string) (*domain.Campaign, error) {
	return t.oneCampaign(ctx, `SELECT `+campaignColumns+`
FROM campaigns
WHERE listing_id = $1 AND status = 'active'
FOR UPDATE`, listingID)
}

func (t *pgTx) HasOpenCampaign(ctx context.Context, listingID string) (bool, error) {
	var open bool
	err := t.q.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM campaigns
    WHERE listing_id = $1 AND status IN ('pending_approval', 'active', 'paused')
)`, listingID).Scan(&open)
	return open, err
}

func (t *pgTx) InsertCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := t.q.Exec(ctx, `
INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		c.ID, c.VendorID, c.ListingID, c.ListingTitle, c.ListingImage, c.Type, c.DurationDays, c.TotalCost,
		c.TargetLocation, c.Goal, c.Priority, c.Status, c.StatusReason, c.StartDate, c.EndDate,
		c.Metrics.Impressions, c.Metrics.Clicks, c.Metrics.CTR, c.Metrics.CPC, c.Metrics.Conversions,
		c.CreatedAt, c.UpdatedAt)
	return constraintError(err)
}

func (t *pgTx) UpdateCampaign(ctx context.Context, c *domain.Campaign) error {
	tag, err := t.q.Exec(ctx, `
UPDATE campaigns SET
    priority = $2,
    status = $3,
    status_reason = $4,
    start_date = $5,
    end_date = $6,
    impressions = $7,
    clicks = $8,
    ctr = $9,
    cpc = $10,
    conversions = $11,
    updated_at = $12
WHERE id = $1`,
		c.ID, c.Priority, c.Status, c.StatusReason, c.StartDate, c.EndDate,
		c.Metrics.Impressions, c.Metrics.Clicks, c.Metrics.CTR, c.Metrics.CPC, c.Metrics.Conversions,
		c.UpdatedAt)
	if err != nil {
		return constraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (t *pgTx) CreditWallet(ctx context.Context, userID string, amount int64, refundsSpend bool) (domain.Wallet, error) {
	if amount <= 0 {
		return domain.Wallet{}, domain.ErrInvalidAmount
	}
	var w domain.Wallet
	err := t.q.QueryRow(ctx, `
UPDATE users SET
    balance = balance + $2,
    total_spend = CASE WHEN $3 THEN GREATEST(total_spend - $2, 0) ELSE total_spend END
WHERE id = $1
RETURNING balance, total_spend, pending_deposit, pending_withdrawal`, userID, amount, refundsSpend).
		Scan(&w.Balance, &w.TotalSpend, &w.PendingDeposit, &w.PendingWithdrawal)
	if err != nil {
		return domain.Wallet{}, notFound(err, domain.ErrUserNotFound)
	}
	return w, nil
}

// DebitWallet guards the balance in the UPDATE itself so the check and the
// write cannot be separated by a concurrent debit.
func (t *pgTx) DebitWallet(ctx context.Context, userID string, amount int64) (domain.Wallet, error) {
	if amount <= 0 {
		return domain.Wallet{}, domain.ErrInvalidAmount
	}
	var w domain.Wallet
	err := t.q.QueryRow(ctx, `
UPDATE users SET
    balance = balance - $2,
    total_spend = total_spend + $2
WHERE id = $1 AND balance >= $2
RETURNING balance, total_spend, pending_deposit, pending_withdrawal`, userID, amount).
		Scan(&w.Balance, &w.TotalSpend, &w.PendingDeposit, &w.PendingWithdrawal)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Wallet{}, err
	}

	var exists bool
	if err = t.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return domain.Wallet{}, err
	}
	if !exists {
		return domain.Wallet{}, domain.ErrUserNotFound
	}
	return domain.Wallet{}, domain.ErrInsufficientFunds
}

func (t *pgTx) AppendTransaction(ctx context.Context, tr *domain.Transaction) error {
	_, err := t.q.Exec(ctx, `
INSERT INTO wallet_transactions (`+transactionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tr.ID, tr.UserID, tr.Type, tr.Amount, tr.BalanceAfter, tr.Date, tr.Status, tr.Description,
		nullable(tr.CampaignID))
	return err
}

func (t *pgTx) SetListingPromoted(ctx context.Context, listingID string, promoted bool) error {
	tag, err := t.q.Exec(ctx, `UPDATE listings SET is_promoted = $2 WHERE id = $1`, listingID, promoted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (t *pgTx) InsertNotification(ctx context.Context, n *domain.Notification) error {
	_, err := t.q.Exec(ctx, `
INSERT INTO notifications (`+notificationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, nullable(n.CampaignID), n.CreatedAt, n.DeliveredAt)
	return err
}

var _ port.Tx = (*pgTx)(nil)

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// maxTxAttempts bounds how often a serialization failure is retried.
const maxTxAttempts = 3

// Store implements port.Store on a PostgreSQL pool. Every unit of work runs
// in a serializable transaction.
type Store struct {
	reader
	pool *pgxpool.Pool
}

// NewStore returns a store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{reader: reader{q: pool}, pool: pool}
}

// WithinTx runs fn in a serializable transaction and retries it when
// PostgreSQL aborts the transaction because of a conflict with a
// concurrent one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	return withRetry(ctx, maxTxAttempts, func() error {
		return s.runTx(ctx, fn)
	})
}

// withRetry calls run until it succeeds, fails with a non-retryable error
// or attempts are used up. A cancelled ctx stops further attempts.
func withRetry(ctx context.Context, attempts int, run func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && ctx.Err() != nil {
			return err
		}
		err = run()
		if !retryable(err) {
			return err
		}
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	return fn(ctx, &pgTx{reader: reader{q: tx}})
}

func (s *Store) EnsureUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	_, err := s.pool.Exec(ctx, `
INSERT INTO users (id, email, role, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`, u.ID, u.Email, u.Role, u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) SetPushToken(ctx context.Context, userID, token string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET push_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO listings (id, vendor_id, title, image_url, location, price, is_promoted, views, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.VendorID, l.Title, l.ImageURL, l.Location, l.Price, l.IsPromoted, l.Views, l.CreatedAt)
	return err
}

func (s *Store) IncrementListingViews(ctx context.Context, listingID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE listings SET views = views + 1 WHERE id = $1`, listingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// PutAdRates upserts the whole table in one batch, which PostgreSQL runs
// as a single implicit transaction.
func (s *Store) PutAdRates(ctx context.Context, rates domain.AdRates) error {
	batch := &pgx.Batch{}
	for t, cost := range rates {
		batch.Queue(`
INSERT INTO ad_rates (campaign_type, cost_per_day, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (campaign_type) DO UPDATE SET cost_per_day = EXCLUDED.cost_per_day, updated_at = EXCLUDED.updated_at`,
			t, cost)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

func (s *Store) PendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+notificationColumns+`
FROM notifications
WHERE delivered_at IS NULL
ORDER BY seq
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanNotification)
}

func (s *Store) MarkNotificationsDelivered(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
UPDATE notifications SET delivered_at = $2
WHERE id = ANY($1) AND delivered_at IS NULL`, ids, at)
	return err
}

// notFound converts pgx.ErrNoRows into the given domain error.
func notFound(err, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}

var _ port.Store = (*Store)(nil)

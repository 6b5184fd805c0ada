package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

// LedgerUseCase keeps wallets and their transaction history. A balance
// change and the transaction that records it are always written in one
// store transaction.
type LedgerUseCase struct {
	store     port.Store
	publisher port.ChangePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedgerUseCase creates a ledger on top of store. publisher may be nil
// when no live feed is wired.
func NewLedgerUseCase(store port.Store, publisher port.ChangePublisher, logger *slog.Logger) *LedgerUseCase {
	return &LedgerUseCase{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// Register creates the caller's user record with an empty wallet.
// Registering twice returns the existing record.
func (u *LedgerUseCase) Register(ctx context.Context, actor domain.Actor, email string) (*domain.User, error) {
	role := domain.RoleVendor
	if actor.Admin {
		role = domain.RoleAdmin
	}
	user, err := u.store.EnsureUser(ctx, &domain.User{
		ID:        actor.UserID,
		Email:     email,
		Role:      role,
		CreatedAt: u.now().UTC(),
	})
	return user, wrap("register", err)
}

// SetPushToken stores the push bridge token of the caller.
func (u *LedgerUseCase) SetPushToken(ctx context.Context, actor domain.Actor, token string) error {
	return wrap("set push token", u.store.SetPushToken(ctx, actor.UserID, token))
}

// Wallet returns the user together with the embedded wallet.
func (u *LedgerUseCase) Wallet(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.store.GetUser(ctx, userID)
	return user, wrap("wallet", err)
}

// History lists the user's transactions, newest first.
func (u *LedgerUseCase) History(ctx context.Context, userID string, page port.Page) ([]domain.Transaction, error) {
	if _, err := u.store.GetUser(ctx, userID); err != nil {
		return nil, wrap("history", err)
	}
	history, err := u.store.ListTransactions(ctx, userID, page.Normalize())
	return history, wrap("history", err)
}

// Credit adds funds. The entry type must be a credit type.
func (u *LedgerUseCase) Credit(ctx context.Context, userID string, entry domain.LedgerEntry) (*domain.Transaction, error) {
	return u.move(ctx, "credit", userID, entry, true)
}

// Debit removes funds. It fails with domain.ErrInsufficientFunds and
// writes nothing when the balance does not cover the amount.
func (u *LedgerUseCase) Debit(ctx context.Context, userID string, entry domain.LedgerEntry) (*domain.Transaction, error) {
	return u.move(ctx, "debit", userID, entry, false)
}

// AdjustFunds lets an admin move funds on any wallet. Debits go through
// the same balance guard as vendor spending.
func (u *LedgerUseCase) AdjustFunds(ctx context.Context, actor domain.Actor, userID string, entry domain.LedgerEntry) (*domain.Transaction, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("adjust funds: %w", domain.ErrForbidden)
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("Admin %s", entry.Type)
	}
	switch {
	case entry.Type.IsCredit():
		return u.Credit(ctx, userID, entry)
	case entry.Type.IsDebit():
		return u.Debit(ctx, userID, entry)
	default:
		return nil, fmt.Errorf("adjust funds: %w: %q", domain.ErrInvalidTransactionType, entry.Type)
	}
}

// Notifications lists the user's notifications, newest first.
func (u *LedgerUseCase) Notifications(ctx context.Context, userID string, page port.Page) ([]domain.Notification, error) {
	out, err := u.store.ListNotifications(ctx, userID, page.Normalize())
	return out, wrap("notifications", err)
}

func (u *LedgerUseCase) move(ctx context.Context, op, userID string, entry domain.LedgerEntry, credit bool) (t *domain.Transaction, err error) {
	ctx, span := tracer.Start(ctx, "ledger."+op)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("transaction.type", string(entry.Type)),
		attribute.Int64("transaction.amount", entry.Amount),
	)
	defer func() { endSpan(span, err) }()

	if err = entry.Validate(credit); err != nil {
		return nil, wrap(op, err)
	}
	now := u.now().UTC()
	err = u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		var txErr error
		t, txErr = post(ctx, tx, userID, entry, credit, now)
		return txErr
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	observeTransaction(t)
	u.logger.Info("wallet "+op,
		slog.String("user_id", userID),
		slog.String("type", string(t.Type)),
		slog.Int64("amount", t.Amount),
		slog.Int64("balance_after", t.BalanceAfter),
	)
	publish(ctx, u.publisher, u.logger, walletChanged(userID, now))
	return t, nil
}

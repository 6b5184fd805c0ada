package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port"
)

var tracer = otel.Tracer("bazaar-ads/usecase")

// wrap prefixes err with op. Errors that are not part of the domain
// taxonomy come from the store and are marked as retryable remote failures.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteFailure, err)
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish announces committed changes. Live updates are best effort, so a
// failure is only logged.
func publish(ctx context.Context, publisher port.ChangePublisher, logger *slog.Logger, events ...domain.ChangeEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events); err != nil {
		logger.Warn("publish change events", slog.Int("count", len(events)), slog.Any("error", err))
	}
}

// post records a balance movement inside tx: the wallet is updated
// atomically and the matching transaction is appended.
func post(ctx context.Context, tx port.Tx, userID string, entry domain.LedgerEntry, credit bool, now time.Time) (*domain.Transaction, error) {
	if err := entry.Validate(credit); err != nil {
		return nil, err
	}
	var (
		wallet domain.Wallet
		err    error
	)
	if credit {
		wallet, err = tx.CreditWallet(ctx, userID, entry.Amount, entry.RefundsSpend)
	} else {
		wallet, err = tx.DebitWallet(ctx, userID, entry.Amount)
	}
	if err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: wallet.Balance,
		Date:         now,
		Status:       domain.TransactionCompleted,
		Description:  entry.Description,
		CampaignID:   entry.CampaignID,
	}
	if err = tx.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func walletChanged(userID string, now time.Time) domain.ChangeEvent {
	return domain.ChangeEvent{Kind: domain.ChangeWallet, ID: userID, UserID: userID, At: now}
}

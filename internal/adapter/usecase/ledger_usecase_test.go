package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bazaar-ads/internal/core/domain"
	"bazaar-ads/internal/core/port/mocks"
)

func TestLedgerReconcilesRandomSequence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	r := rand.New(rand.NewSource(42))
	credits := []domain.TransactionType{domain.TransactionDeposit, domain.TransactionBonus, domain.TransactionAdjustment}
	debits := []domain.TransactionType{domain.TransactionWithdrawal, domain.TransactionFee, domain.TransactionPenalty}

	for i := 0; i < 150; i++ {
		amount := r.Int63n(2000) - 50
		var err error
		if r.Intn(2) == 0 {
			_, err = f.ledger.Credit(ctx, vendor.UserID, domain.LedgerEntry{Amount: amount, Type: credits[r.Intn(len(credits))], RefundsSpend: r.Intn(4) == 0})
		} else {
			_, err = f.ledger.Debit(ctx, vendor.UserID, domain.LedgerEntry{Amount: amount, Type: debits[r.Intn(len(debits))]})
		}
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrInsufficientFunds), err)
		}

		w := f.wallet(t, vendor.UserID)
		require.GreaterOrEqual(t, w.Balance, int64(0))
		require.GreaterOrEqual(t, w.TotalSpend, int64(0))
	}

	history := f.history(t, vendor.UserID)
	assert.Equal(t, startingBalance+signedSum(history), f.wallet(t, vendor.UserID).Balance)
	if len(history) > 0 {
		assert.Equal(t, f.wallet(t, vendor.UserID).Balance, history[0].BalanceAfter)
	}
}

func TestDebitInsufficientFundsLeavesWalletUntouched(t *testing.T) {
	f := newFixture(t, nil)
	before := f.wallet(t, vendor.UserID)

	_, err := f.ledger.Debit(context.Background(), vendor.UserID, domain.LedgerEntry{Amount: startingBalance + 1, Type: domain.TransactionWithdrawal})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, before, f.wallet(t, vendor.UserID))
	assert.Empty(t, f.history(t, vendor.UserID))
}

func TestCreditAndDebitValidateEntries(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.ledger.Credit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 0, Type: domain.TransactionDeposit})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.ledger.Credit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 10, Type: domain.TransactionFee})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
	_, err = f.ledger.Debit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 10, Type: domain.TransactionBonus})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
	_, err = f.ledger.Credit(ctx, "ghost", domain.LedgerEntry{Amount: 10, Type: domain.TransactionDeposit})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, f.history(t, vendor.UserID))
}

func TestDebitCountsSpendAndRefundLowersIt(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.ledger.Debit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 300, Type: domain.TransactionPromotion})
	require.NoError(t, err)
	tr, err := f.ledger.Credit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 500, Type: domain.TransactionAdjustment, RefundsSpend: true})
	require.NoError(t, err)

	assert.Equal(t, domain.Wallet{Balance: 5200, TotalSpend: 0}, f.wallet(t, vendor.UserID))
	assert.Equal(t, int64(5200), tr.BalanceAfter)
	assert.Equal(t, domain.TransactionCompleted, tr.Status)
	assert.NotEmpty(t, tr.ID)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.Debit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 100, Type: domain.TransactionFee}); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), succeeded.Load())
	assert.Equal(t, int64(0), f.wallet(t, vendor.UserID).Balance)
	assert.Len(t, f.history(t, vendor.UserID), 50)
}

func TestAdjustFunds(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.ledger.AdjustFunds(ctx, vendor, rival.UserID, domain.LedgerEntry{Amount: 10, Type: domain.TransactionBonus})
	require.ErrorIs(t, err, domain.ErrForbidden)

	tr, err := f.ledger.AdjustFunds(ctx, admin, rival.UserID, domain.LedgerEntry{Amount: 250, Type: domain.TransactionBonus})
	require.NoError(t, err)
	assert.Equal(t, "Admin bonus", tr.Description)
	assert.Equal(t, startingBalance+250, f.wallet(t, rival.UserID).Balance)

	_, err = f.ledger.AdjustFunds(ctx, admin, rival.UserID, domain.LedgerEntry{Amount: 100000, Type: domain.TransactionPenalty})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, startingBalance+250, f.wallet(t, rival.UserID).Balance)

	_, err = f.ledger.AdjustFunds(ctx, admin, rival.UserID, domain.LedgerEntry{Amount: 50, Type: domain.TransactionPenalty, Description: "spam"})
	require.NoError(t, err)
	assert.Equal(t, startingBalance+200, f.wallet(t, rival.UserID).Balance)

	_, err = f.ledger.AdjustFunds(ctx, admin, rival.UserID, domain.LedgerEntry{Amount: 50, Type: "gift"})
	require.ErrorIs(t, err, domain.ErrInvalidTransactionType)
}

func TestRegisterIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	newcomer := domain.Actor{UserID: "newcomer", Verified: true}

	u, err := f.ledger.Register(ctx, newcomer, "a@b.pk")
	require.NoError(t, err)
	assert.Equal(t, domain.Wallet{}, u.Wallet)
	assert.Equal(t, domain.RoleVendor, u.Role)

	_, err = f.ledger.Credit(ctx, newcomer.UserID, domain.LedgerEntry{Amount: 10, Type: domain.TransactionDeposit})
	require.NoError(t, err)

	u, err = f.ledger.Register(ctx, newcomer, "a@b.pk")
	require.NoError(t, err)
	assert.Equal(t, int64(10), u.Wallet.Balance)

	require.NoError(t, f.ledger.SetPushToken(ctx, newcomer, "fcm-token"))
	stored, err := f.store.GetUser(ctx, newcomer.UserID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token", stored.PushToken)
}

func TestLedgerPublishesWalletChangeOnlyAfterCommit(t *testing.T) {
	publisher := mocks.NewMockChangePublisher(t)
	f := newFixture(t, publisher)
	ctx := context.Background()

	publisher.EXPECT().
		Publish(mock.Anything, mock.MatchedBy(func(events []domain.ChangeEvent) bool {
			return len(events) == 1 && events[0].Kind == domain.ChangeWallet && events[0].UserID == vendor.UserID
		})).
		Return(errors.New("redis down")).
		Once()

	_, err := f.ledger.Credit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 10, Type: domain.TransactionDeposit})
	require.NoError(t, err, "publish failures must not fail the movement")

	_, err = f.ledger.Debit(ctx, vendor.UserID, domain.LedgerEntry{Amount: 1 << 40, Type: domain.TransactionFee})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestWrapMarksStoreErrorsAsRemote(t *testing.T) {
	err := wrap("op", errors.New("connection reset"))
	assert.ErrorIs(t, err, domain.ErrRemoteFailure)

	err = wrap("op", domain.ErrInsufficientFunds)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.NotErrorIs(t, err, domain.ErrRemoteFailure)

	assert.NoError(t, wrap("op", nil))
}

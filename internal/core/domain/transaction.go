package domain

import "time"

// TransactionType names the kind of balance movement. The direction of a
// movement is implied by its type.
type TransactionType string

const (
	TransactionDeposit       TransactionType = "deposit"
	TransactionWithdrawal    TransactionType = "withdrawal"
	TransactionAdjustment    TransactionType = "adjustment"
	TransactionBonus         TransactionType = "bonus"
	TransactionPenalty       TransactionType = "penalty"
	TransactionFee           TransactionType = "fee"
	TransactionCommission    TransactionType = "commission"
	TransactionPromotion     TransactionType = "promotion"
	TransactionReferralBonus TransactionType = "referral_bonus"
)

// IsCredit reports whether the type adds funds to a wallet.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionDeposit, TransactionAdjustment, TransactionBonus,
		TransactionCommission, TransactionReferralBonus:
		return true
	}
	return false
}

// IsDebit reports whether the type removes funds from a wallet.
func (t TransactionType) IsDebit() bool {
	switch t {
	case TransactionWithdrawal, TransactionPenalty, TransactionFee, TransactionPromotion:
		return true
	}
	return false
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t.IsCredit() || t.IsDebit()
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is an immutable entry of a user's wallet history. Amount is
// always a positive magnitude.
type Transaction struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	Type         TransactionType   `json:"type"`
	Amount       int64             `json:"amount"`
	BalanceAfter int64             `json:"balanceAfter"`
	Date         time.Time         `json:"date"`
	Status       TransactionStatus `json:"status"`
	Description  string            `json:"description"`
	CampaignID   string            `json:"campaignId,omitempty"`
}

// Signed returns the amount with the sign implied by the type: positive for
// credits, negative for debits.
func (t Transaction) Signed() int64 {
	if t.Type.IsDebit() {
		return -t.Amount
	}
	return t.Amount
}

// LedgerEntry describes a requested balance movement before it is recorded.
type LedgerEntry struct {
	Amount      int64
	Type        TransactionType
	Description string
	// RefundsSpend marks a credit that gives back money previously counted
	// in the wallet's TotalSpend.
	RefundsSpend bool
	CampaignID   string
}

// Validate checks the amount and that the type matches the direction of
// the movement.
func (e LedgerEntry) Validate(credit bool) error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if credit && !e.Type.IsCredit() || !credit && !e.Type.IsDebit() {
		return ErrInvalidTransactionType
	}
	return nil
}

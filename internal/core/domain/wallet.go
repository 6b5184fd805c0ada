package domain

// Wallet is the spendable balance embedded in a User. Amounts are integer
// currency units.
type Wallet struct {
	Balance           int64 `json:"balance"`
	TotalSpend        int64 `json:"totalSpend"`
	PendingDeposit    int64 `json:"pendingDeposit"`
	PendingWithdrawal int64 `json:"pendingWithdrawal"`
}

// Credit adds amount to the balance. When refundsSpend is set the amount
// is also taken back out of TotalSpend, never below zero.
func (w *Wallet) Credit(amount int64, refundsSpend bool) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	w.Balance += amount
	if refundsSpend {
		w.TotalSpend = max(0, w.TotalSpend-amount)
	}
	return nil
}

// Debit removes amount from the balance and counts it as spend. The wallet
// is left untouched when the balance cannot cover amount.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if w.Balance < amount {
		return ErrInsufficientFunds
	}
	w.Balance -= amount
	w.TotalSpend += amount
	return nil
}

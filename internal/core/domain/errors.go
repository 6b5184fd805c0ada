package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the ledger and the campaign lifecycle. Adapters
// translate them to transport specific codes; callers compare with
// errors.Is.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("transaction type not allowed")
	ErrInvalidTransition      = errors.New("invalid campaign transition")
	ErrInvalidCampaign        = errors.New("invalid campaign request")
	ErrInvalidListing         = errors.New("invalid listing")
	ErrListingAlreadyPromoted = errors.New("listing already has an open campaign")
	ErrForbidden              = errors.New("forbidden")
	ErrRemoteFailure          = errors.New("remote failure")

	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrListingNotFound  = fmt.Errorf("listing %w", ErrNotFound)
	ErrCampaignNotFound = fmt.Errorf("campaign %w", ErrNotFound)
)

// IsDomainError reports whether err carries one of the sentinel errors
// above. Anything else coming from a store is treated as a remote failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInsufficientFunds,
		ErrInvalidAmount,
		ErrInvalidTransactionType,
		ErrInvalidTransition,
		ErrInvalidCampaign,
		ErrInvalidListing,
		ErrListingAlreadyPromoted,
		ErrForbidden,
		ErrRemoteFailure,
		ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

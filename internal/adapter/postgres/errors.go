package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"bazaar-ads/internal/core/domain"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"

	activeCampaignIndex = "campaigns_one_active_per_listing"
)

// retryable reports whether the transaction was aborted by a conflict and
// may succeed when run again.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// constraintError maps a violation of the one-active-campaign index to
// domain.ErrListingAlreadyPromoted.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == activeCampaignIndex {
		return domain.ErrListingAlreadyPromoted
	}
	return err
}

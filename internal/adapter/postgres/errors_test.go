package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar-ads/internal/core/domain"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"serialization", &pgconn.PgError{Code: codeSerializationFailure}, true},
		{"deadlock", fmt.Errorf("commit: %w", &pgconn.PgError{Code: codeDeadlockDetected}), true},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestConstraintError(t *testing.T) {
	err := constraintError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: activeCampaignIndex})
	require.ErrorIs(t, err, domain.ErrListingAlreadyPromoted)

	other := &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "campaigns_pkey"}
	assert.Same(t, other, constraintError(other))
	assert.NoError(t, constraintError(nil))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows, domain.ErrUserNotFound), domain.ErrUserNotFound)

	boom := errors.New("boom")
	assert.Equal(t, boom, notFound(boom, domain.ErrUserNotFound))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("c1"))
	assert.Equal(t, "c1", *nullable("c1"))
}

func TestWithRetry(t *testing.T) {
	conflict := &pgconn.PgError{Code: codeSerializationFailure}

	t.Run("third attempt runs after two conflicts", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), maxTxAttempts, func() error {
			calls++
			if calls < 3 {
				return conflict
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), maxTxAttempts, func() error {
			calls++
			return fmt.Errorf("commit: %w", conflict)
		})
		require.ErrorAs(t, err, new(*pgconn.PgError))
		assert.Equal(t, maxTxAttempts, calls)
	})

	t.Run("domain errors are not retried", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), maxTxAttempts, func() error {
			calls++
			return domain.ErrInsufficientFunds
		})
		require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := withRetry(ctx, maxTxAttempts, func() error {
			calls++
			cancel()
			return conflict
		})
		require.ErrorAs(t, err, new(*pgconn.PgError))
		assert.Equal(t, 1, calls)
	})
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	cfg := DefaultConfig
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.JitterEnabled = false
	return cfg
}

func TestIsRetryableError(t *testing.T) {
	cfg := fastConfig()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conflict", fmt.Errorf("commit: %w", shared.NewConcurrentModificationError("order", "o-1")), true},
		{"mysql deadlock", &mysqlDriver.MySQLError{Number: 1213}, true},
		{"mysql lock timeout", &mysqlDriver.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysqlDriver.MySQLError{Number: 1062}, false},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"business conflict", shared.NewConflictError("product", "insufficient stock"), false},
		{"validation", shared.NewValidationError("order", "id", "bad"), false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err, cfg))
		})
	}

	cfg.RetryOnConcurrentModification = false
	assert.False(t, IsRetryableError(shared.NewConcurrentModificationError("order", "o-1"), cfg))
}

func TestExecuteWithRetry(t *testing.T) {
	cfg := fastConfig()

	calls := 0
	err := ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return shared.NewConcurrentModificationError("order", "o-1")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	permanent := errors.New("boom")
	err = ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)

	calls = 0
	err = ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		return shared.NewConcurrentModificationError("order", "o-1")
	})
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, cfg.MaxAttempts, calls)
}

func TestExecuteWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := ExecuteWithRetry(ctx, fastConfig(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBackoff(t *testing.T) {
	cfg := Config{InitialDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond, BackoffFactor: 2}
	assert.Equal(t, time.Duration(0), ExponentialBackoffWithJitter(0, cfg))
	assert.Equal(t, 10*time.Millisecond, ExponentialBackoffWithJitter(1, cfg))
	assert.Equal(t, 20*time.Millisecond, ExponentialBackoffWithJitter(2, cfg))
	assert.Equal(t, 25*time.Millisecond, ExponentialBackoffWithJitter(3, cfg))
}

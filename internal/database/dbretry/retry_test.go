package dbretry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agorahq/agora/internal/database/dbretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPermanent = errors.New("permanent")

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsRetryableError(nil))
	assert.False(t, dbretry.IsRetryableError(errPermanent))
	assert.False(t, dbretry.IsRetryableError(context.Canceled))
	assert.True(t, dbretry.IsRetryableError(errors.New("write: broken pipe")))
	assert.True(t, dbretry.IsRetryableError(errors.New("database is locked (5) (SQLITE_BUSY)")))
}

func TestOperationRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	got, err := dbretry.Operation(t.Context(), func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("connection reset by peer")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, attempts)
}

func TestNoResultKeepsSentinel(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := dbretry.NoResult(t.Context(), func(context.Context) error {
		attempts++
		return errPermanent
	})

	require.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, attempts)
}

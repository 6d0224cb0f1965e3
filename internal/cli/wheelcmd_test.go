package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExpiryDefaultsToNextFriday(t *testing.T) {
	monday := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	expiry, err := resolveExpiry("", monday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC), expiry)
}

func TestResolveExpiryParsesExplicitDate(t *testing.T) {
	expiry, err := resolveExpiry("2026-09-18", time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 18, 0, 0, 0, 0, time.UTC), expiry)

	_, err = resolveExpiry("09/18/2026", time.Now())
	assert.Error(t, err)
}

func TestContractTotal(t *testing.T) {
	// One contract covers 100 shares.
	assert.Equal(t, 800.0, contractTotal(8, 1))
	assert.Equal(t, 1600.0, contractTotal(8, 2))
	assert.Equal(t, -250.0, contractTotal(-2.5, 1))

	// A zero quantity from an old record still counts as one contract.
	assert.Equal(t, 800.0, contractTotal(8, 0))
}

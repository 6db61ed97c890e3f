package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STARTING_BALANCE", "")
	t.Setenv("LISTING_FEE_BPS", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.StartingBalance)
	assert.Equal(t, 100, cfg.ListingFeeBps)
	assert.Equal(t, "test", cfg.Environment)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STARTING_BALANCE", "2500")
	t.Setenv("LISTING_FEE_BPS", "250")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(2500), cfg.StartingBalance)
	assert.Equal(t, 250, cfg.ListingFeeBps)
}

func TestLoad_RequiresDatabaseURLOutsideTests(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")

	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STARTING_BALANCE", "lots")
	t.Setenv("LISTING_FEE_BPS", "1%")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.StartingBalance)
	assert.Equal(t, 100, cfg.ListingFeeBps)
}

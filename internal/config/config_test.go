package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/crypteax")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("WALLET_PROJECT_ID", "proj")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "crypteax-be", cfg.Session.Issuer)
	assert.Equal(t, 10*time.Minute, cfg.Redis.NonceTTL)
	assert.Equal(t, 10*time.Second, cfg.Wallet.VerifyTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://crypteax.io, https://app.crypteax.io ,")
	t.Setenv("SIWE_DOMAIN", "crypteax.io")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://crypteax.io", "https://app.crypteax.io"}, cfg.CORSOrigins)
	assert.Equal(t, "crypteax.io", cfg.Wallet.Domain)
}

func TestLoadFailsFastOnMissingSecrets(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "SESSION_SECRET", "WALLET_PROJECT_ID"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDatabaseURLIgnoresServeSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crypteax")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("WALLET_PROJECT_ID", "")

	url, err := LoadDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/crypteax", url)
}

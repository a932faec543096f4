package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutFallback(t *testing.T) {
	assert.Equal(t, 30*time.Second, (&Config{}).Timeout())
	assert.Equal(t, 10*time.Second, (&Config{RequestTimeout: 10}).Timeout())
}

func TestLoadCreatesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 20, cfg.PageSize)

	// The file written on first load round-trips.
	cfg.PageSize = 50
	require.NoError(t, Save(cfg))
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.PageSize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEALDESK_API_URL", "https://staging.example.com")
	t.Setenv("DEALDESK_LOG_LEVEL", "debug")
	t.Setenv("DEALDESK_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.RequestTimeout)

	// Garbage timeout values are ignored.
	t.Setenv("DEALDESK_TIMEOUT_SECONDS", "soon")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RequestTimeout)
}

package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	d := DefaultAppConfig()
	assert.Equal(t, d.Backend.BaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, d.Compose.RevealInterval, cfg.Compose.RevealInterval)
	assert.Equal(t, d.IMAP.Port, cfg.IMAP.Port)
	assert.Zero(t, cfg.Refresh.Interval)
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `backend:
  base_url: http://api.example.com:9000/
  timeout: 5s
  max_retries: -3
compose:
  reveal_interval: 0s
refresh:
  interval: 2m
imap:
  host: imap.example.com
  username: me@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.com:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 0, cfg.Backend.MaxRetries)
	assert.Equal(t, DefaultAppConfig().Compose.RevealInterval, cfg.Compose.RevealInterval)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, "imap.example.com", cfg.IMAP.Host)
	assert.Equal(t, "993", cfg.IMAP.Port)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  base_url: http://file\n"), 0o644))
	t.Setenv("MAILMIND_BACKEND_BASE_URL", "http://env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.Backend.BaseURL)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Backend.BaseURL = "http://saved"
	cfg.Refresh.Interval = 30 * time.Second
	cfg.Cache.Enabled = false
	cfg.IMAP = IMAPConfig{Host: "imap.example.com", Port: "143", Username: "me", TLS: false, Limit: 10}

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved", got.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, got.Refresh.Interval)
	assert.False(t, got.Cache.Enabled)
	assert.Equal(t, cfg.IMAP, got.IMAP)
	assert.Equal(t, cfg.Log, got.Log)
}

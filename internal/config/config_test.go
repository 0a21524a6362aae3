package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"PORTAL_API_BASE_URL", "PORTAL_API_TIMEOUT", "PORTAL_SESSION_FILE",
		"PORTAL_SESSION_DATABASE_URL", "PORTAL_HTTP_ADDR", "PORTAL_LOGGING_LEVEL",
		"PORTAL_LOGGING_FORMAT", "PORTAL_OUTPUT_FORMAT", "PORTAL_NOTIFICATIONS_INTERVAL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, filepath.Join(home, ".config", "portal", "session.json"), cfg.Session.File)
	assert.Empty(t, cfg.Session.DatabaseURL)
	assert.Equal(t, ":5173", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 20*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Notifications.Interval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Output.Colors)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PORTAL_API_BASE_URL", "https://api.linkup.test")
	t.Setenv("PORTAL_API_TIMEOUT", "5s")
	t.Setenv("PORTAL_HTTP_ADDR", ":9000")
	t.Setenv("PORTAL_NOTIFICATIONS_INTERVAL", "1m")
	t.Setenv("PORTAL_OUTPUT_FORMAT", "yaml")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.linkup.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Notifications.Interval)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "portal.yaml")
	content := `
api:
  base_url: http://backend:8080
session:
  file: /tmp/portal-test/session.json
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8080", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/portal-test/session.json", cfg.Session.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad base url", "PORTAL_API_BASE_URL", "ftp://x", "api.base_url must start with http:// or https://"},
		{"bad level", "PORTAL_LOGGING_LEVEL", "trace", "invalid logging level"},
		{"bad log format", "PORTAL_LOGGING_FORMAT", "xml", "invalid logging format"},
		{"bad output", "PORTAL_OUTPUT_FORMAT", "csv", "invalid output format"},
		{"bad interval", "PORTAL_NOTIFICATIONS_INTERVAL", "0s", "notifications.interval must be > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

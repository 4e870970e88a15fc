package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stocks.csv", cfg.Data)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, 10*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 1, cfg.Yahoo.Retries)
	assert.Equal(t, 5, cfg.Yahoo.RateLimit)
	assert.Equal(t, "https://query2.finance.yahoo.com", cfg.Yahoo.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HSCREEN_DATA", "/srv/halal.csv")
	t.Setenv("HSCREEN_YAHOO_TIMEOUT", "3s")
	t.Setenv("HSCREEN_YAHOO_RETRIES", "0")
	t.Setenv("HSCREEN_OUTPUT_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/halal.csv", cfg.Data)
	assert.Equal(t, 3*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 0, cfg.Yahoo.Retries)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data: ref.csv
yahoo:
  rate_limit: 2
  timeout: 4s
cache:
  size: 10
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ref.csv", cfg.Data)
	assert.Equal(t, 2, cfg.Yahoo.RateLimit)
	assert.Equal(t, 4*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 10, cfg.Cache.Size)
	assert.Equal(t, 1, cfg.Yahoo.Retries, "unset keys keep defaults")
}

func TestSearchPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hscreen.yaml"), []byte("output:\n  format: syms\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "syms", cfg.Output.Format)
}

func TestExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

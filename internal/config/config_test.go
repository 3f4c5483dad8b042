package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, "models/intent_classifier.gob", cfg.Model.Path)
	assert.Equal(t, 1000, cfg.Model.MaxFeatures)
	assert.Equal(t, uint64(42), cfg.Chat.Seed)
	assert.Equal(t, 7, cfg.Chat.WindowDays)
	assert.Equal(t, 24*time.Hour, cfg.Digest.Interval)
	assert.True(t, cfg.Digest.RunImmediately)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  source: postgres
database:
  table: prices
chat:
  default_year: 2023
digest:
  interval: 6h
  run_immediately: false
`), 0o600))
	t.Setenv("COININSIGHTS_DATABASE_DSN", "postgres://localhost/coins")
	t.Setenv("COININSIGHTS_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, cfg.Data.Source)
	assert.Equal(t, "postgres://localhost/coins", cfg.Database.DSN)
	assert.Equal(t, "prices", cfg.Database.Table)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 6*time.Hour, cfg.Digest.Interval)
	assert.False(t, cfg.Digest.RunImmediately)
	assert.Equal(t, 2023, cfg.ResolveYear(0))
	assert.Equal(t, 2021, cfg.ResolveYear(2021))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COININSIGHTS_CHAT_WINDOW_DAYS=14\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("COININSIGHTS_CHAT_WINDOW_DAYS") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Chat.WindowDays)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"unknown source":     func(c *Config) { c.Data.Source = "parquet" },
		"postgres needs dsn": func(c *Config) { c.Data.Source = SourcePostgres },
		"clickhouse dsn":     func(c *Config) { c.Data.Source = SourceClickHouse },
		"window":             func(c *Config) { c.Chat.WindowDays = 0 },
		"telegram token":     func(c *Config) { c.Notify.Telegram.Enabled = true },
		"export size":        func(c *Config) { c.Export.Width = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := *base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

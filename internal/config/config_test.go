package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundDesk/internal/money"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "data/system_state.json", cfg.Store.Path)
	assert.Equal(t, money.FromReais(100), cfg.MinContribution())
	assert.Equal(t, 90, cfg.Fund.LockupDays)
	assert.Equal(t, "100", cfg.MaxManualPercent().String())
	lo, hi := cfg.AutoRange()
	assert.Equal(t, "-0.1", lo.String())
	assert.Equal(t, "0.8", hi.String())
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.DailyCron)
	assert.Equal(t, "0 0 9 * * *", cfg.Schedule.PendingCron)
	assert.False(t, cfg.TelegramEnabled())
	assert.True(t, cfg.StartDate().IsZero())
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  jwt_secret: "yaml-secret-0123456789"
store:
  driver: sqlite
fund:
  min_contribution: 250.5
  lockup_days: 30
  auto_min_pct: 0
  auto_max_pct: 0.5
  start_date: "2026-01-05"
telegram:
  bot_token: "yaml-token"
  chat_id: "1"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("FUNDDESK_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "data/funddesk_state.db", cfg.Store.Path)
	assert.Equal(t, money.Cents(25050), cfg.MinContribution())
	assert.Equal(t, 30, cfg.Fund.LockupDays)
	lo, hi := cfg.AutoRange()
	assert.True(t, lo.IsZero())
	assert.Equal(t, "0.5", hi.String())
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), cfg.StartDate())
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, want: "store.driver"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = "postgres" }, want: "store.dsn"},
		{name: "inverted range", mutate: func(c *Config) { c.Fund.AutoMinPct = 1 }, want: "auto_min_pct"},
		{name: "bad start date", mutate: func(c *Config) { c.Fund.StartDate = "05/01/2026" }, want: "start_date"},
		{name: "huge minimum", mutate: func(c *Config) { c.Fund.MinContribution = 1e20 }, want: "min_contribution"},
		{name: "negative max pct", mutate: func(c *Config) { c.Fund.MaxManualPct = -1 }, want: "max_manual_pct"},
		{name: "max pct too large", mutate: func(c *Config) { c.Fund.MaxManualPct = 1e30 }, want: "max_manual_pct"},
		{name: "half telegram", mutate: func(c *Config) { c.Telegram.BotToken = "x" }, want: "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := base()
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

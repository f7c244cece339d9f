package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"FundDesk/internal/money"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string   `yaml:"addr" env:"FUNDDESK_ADDR"`
		JWTSecret   string   `yaml:"jwt_secret" env:"FUNDDESK_JWT_SECRET"`
		CORSOrigins []string `yaml:"cors_origins" env:"FUNDDESK_CORS_ORIGINS" envSeparator:","`
	} `yaml:"server"`
	Store struct {
		Driver string `yaml:"driver" env:"FUNDDESK_STORE_DRIVER"`
		Path   string `yaml:"path" env:"FUNDDESK_STATE_PATH"`
		DSN    string `yaml:"dsn" env:"DATABASE_URL"`
	} `yaml:"store"`
	Fund struct {
		MinContribution float64 `yaml:"min_contribution" env:"FUNDDESK_MIN_CONTRIBUTION"`
		LockupDays      int     `yaml:"lockup_days" env:"FUNDDESK_LOCKUP_DAYS"`
		AutoMinPct      float64 `yaml:"auto_min_pct" env:"FUNDDESK_AUTO_MIN_PCT"`
		AutoMaxPct      float64 `yaml:"auto_max_pct" env:"FUNDDESK_AUTO_MAX_PCT"`
		MaxManualPct    float64 `yaml:"max_manual_pct" env:"FUNDDESK_MAX_MANUAL_PCT"`
		StartDate       string  `yaml:"start_date" env:"FUNDDESK_START_DATE"`
	} `yaml:"fund"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron" env:"CRON_DAILY"`
		PendingCron string `yaml:"pending_cron" env:"CRON_PENDING"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
		Proxy    string `yaml:"proxy" env:"HTTPS_PROXY"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`
	AMQP struct {
		URL string `yaml:"url" env:"RABBITMQ_URL"`
	} `yaml:"amqp"`

	// autoBounds records whether either percentage bound was set explicitly,
	// so a configured 0 is not replaced by the default.
	autoBounds bool
}

// Load reads config from a YAML file, then a local .env file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var keys struct {
			Fund map[string]any `yaml:"fund"`
		}
		if err := yaml.Unmarshal(data, &keys); err == nil {
			_, hasMin := keys.Fund["auto_min_pct"]
			_, hasMax := keys.Fund["auto_max_pct"]
			cfg.autoBounds = hasMin || hasMax
		}
	}

	// .env never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if _, ok := os.LookupEnv("FUNDDESK_AUTO_MIN_PCT"); ok {
		cfg.autoBounds = true
	}
	if _, ok := os.LookupEnv("FUNDDESK_AUTO_MAX_PCT"); ok {
		cfg.autoBounds = true
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case "sqlite":
			c.Store.Path = "data/funddesk_state.db"
		default:
			c.Store.Path = "data/system_state.json"
		}
	}
	if c.Fund.MinContribution == 0 {
		c.Fund.MinContribution = 100
	}
	if c.Fund.LockupDays == 0 {
		c.Fund.LockupDays = 90
	}
	if c.Fund.MaxManualPct == 0 {
		c.Fund.MaxManualPct = 100
	}
	if !c.autoBounds {
		c.Fund.AutoMinPct = -0.10
		c.Fund.AutoMaxPct = 0.80
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.PendingCron == "" {
		c.Schedule.PendingCron = "0 0 9 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/funddesk_history.db"
	}
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver postgres")
		}
	default:
		return fmt.Errorf("store.driver must be file, sqlite or postgres, got %q", c.Store.Driver)
	}
	if c.Fund.MinContribution < 0 {
		return fmt.Errorf("fund.min_contribution must not be negative")
	}
	if _, err := money.FromDecimal(decimal.NewFromFloat(c.Fund.MinContribution)); err != nil {
		return fmt.Errorf("fund.min_contribution: %w", err)
	}
	if c.Fund.MaxManualPct <= 0 || c.Fund.MaxManualPct > 1000 {
		return fmt.Errorf("fund.max_manual_pct must be in (0, 1000]")
	}
	if c.Fund.LockupDays < 0 {
		return fmt.Errorf("fund.lockup_days must not be negative")
	}
	if c.Fund.AutoMinPct > c.Fund.AutoMaxPct {
		return fmt.Errorf("fund.auto_min_pct must not exceed fund.auto_max_pct")
	}
	if c.Fund.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Fund.StartDate); err != nil {
			return fmt.Errorf("fund.start_date must be YYYY-MM-DD: %w", err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// ValidateServer checks the settings needed to serve or sign tokens.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Server.JWTSecret) < 16 {
		return fmt.Errorf("server.jwt_secret must be at least 16 characters")
	}
	return nil
}

// TelegramEnabled reports whether operator alerts are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// MinContribution returns the minimum accepted deposit. Validate rejects
// values that do not convert.
func (c *Config) MinContribution() money.Cents {
	v, err := money.FromDecimal(decimal.NewFromFloat(c.Fund.MinContribution))
	if err != nil {
		return money.MaxAmount
	}
	return v
}

// MaxManualPercent returns the largest manual daily percentage magnitude.
func (c *Config) MaxManualPercent() decimal.Decimal {
	return decimal.NewFromFloat(c.Fund.MaxManualPct)
}

// AutoRange returns the bounds of the automatic daily percentage.
func (c *Config) AutoRange() (decimal.Decimal, decimal.Decimal) {
	return decimal.NewFromFloat(c.Fund.AutoMinPct), decimal.NewFromFloat(c.Fund.AutoMaxPct)
}

// StartDate returns the virtual date a new state starts on, or the zero time
// to use today's date.
func (c *Config) StartDate() time.Time {
	if c.Fund.StartDate == "" {
		return time.Time{}
	}
	d, err := time.Parse(time.DateOnly, c.Fund.StartDate)
	if err != nil {
		return time.Time{}
	}
	return d
}

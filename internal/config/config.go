package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"DriftSentinel/internal/calculator"
	"DriftSentinel/internal/marketdata"
	"DriftSentinel/internal/pipeline"
)

// Config holds all application configuration. Credentials are carried here
// and passed explicitly into constructors; no process-wide mutable state.
type Config struct {
	Alpaca struct {
		KeyID       string `yaml:"key_id"`
		SecretKey   string `yaml:"secret_key"`
		DataURL     string `yaml:"data_url"`
		CalendarURL string `yaml:"calendar_url"`
	} `yaml:"alpaca"`
	Analysis struct {
		Ticker          string `yaml:"ticker"`
		StartYear       int    `yaml:"start_year"`
		EndYear         int    `yaml:"end_year"`
		Timeframe       string `yaml:"timeframe"`
		Mode            string `yaml:"mode"`
		CloseConvention string `yaml:"close_convention"`
	} `yaml:"analysis"`
	Cache struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Output struct {
		CSVDir string `yaml:"csv_dir"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
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
	}

	// Environment variable overrides
	if v := os.Getenv("ALPACA_KEY"); v != "" {
		cfg.Alpaca.KeyID = v
	}
	if v := os.Getenv("ALPACA_SECRET"); v != "" {
		cfg.Alpaca.SecretKey = v
	}
	if v := os.Getenv("DRIFT_TICKER"); v != "" {
		cfg.Analysis.Ticker = v
	}
	if v := os.Getenv("DRIFT_START_YEAR"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.StartYear = y
		}
	}
	if v := os.Getenv("DRIFT_END_YEAR"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.EndYear = y
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Analysis.Ticker == "" {
		cfg.Analysis.Ticker = "SPY"
	}
	if cfg.Analysis.StartYear == 0 {
		cfg.Analysis.StartYear = 2017
	}
	if cfg.Analysis.EndYear == 0 {
		cfg.Analysis.EndYear = 2024
	}
	if cfg.Analysis.Timeframe == "" {
		cfg.Analysis.Timeframe = "30Min"
	}
	if cfg.Analysis.Mode == "" {
		cfg.Analysis.Mode = "daily"
	}
	if cfg.Analysis.CloseConvention == "" {
		cfg.Analysis.CloseConvention = "last_bar"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and parseable.
func (c *Config) Validate() error {
	if c.Alpaca.KeyID == "" {
		return fmt.Errorf("alpaca.key_id is required")
	}
	if c.Alpaca.SecretKey == "" {
		return fmt.Errorf("alpaca.secret_key is required")
	}
	if c.Analysis.StartYear > c.Analysis.EndYear {
		return fmt.Errorf("analysis.start_year %d after end_year %d", c.Analysis.StartYear, c.Analysis.EndYear)
	}
	if _, err := marketdata.ParseTimeframe(c.Analysis.Timeframe); err != nil {
		return fmt.Errorf("analysis.timeframe: %w", err)
	}
	if _, err := pipeline.ParseMode(c.Analysis.Mode); err != nil {
		return fmt.Errorf("analysis.mode: %w", err)
	}
	if _, err := calculator.ParseCloseConvention(c.Analysis.CloseConvention); err != nil {
		return fmt.Errorf("analysis.close_convention: %w", err)
	}
	return nil
}

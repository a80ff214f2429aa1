package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Mongo struct {
		URI               string `yaml:"uri"`
		Database          string `yaml:"database"`
		ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
	} `yaml:"mongo"`
	Finnhub struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSec     int    `yaml:"timeout_sec"`
		RequestsPerSec int    `yaml:"requests_per_sec"`
		Burst          int    `yaml:"burst"`
		MaxConcurrency int    `yaml:"max_concurrency"`
		CacheTTLSec    int    `yaml:"cache_ttl_sec"`
	} `yaml:"finnhub"`
	SendGrid struct {
		APIKey    string `yaml:"api_key"`
		FromName  string `yaml:"from_name"`
		FromEmail string `yaml:"from_email"`
	} `yaml:"sendgrid"`
	Schedule struct {
		ScanCron       string `yaml:"scan_cron"`
		Timezone       string `yaml:"timezone"`
		ScanTimeoutSec int    `yaml:"scan_timeout_sec"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		FilePath   string `yaml:"file_path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, applies defaults, then applies
// environment variable overrides.
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

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mongo.Database == "" {
		c.Mongo.Database = "stockwatch"
	}
	if c.Mongo.ConnectTimeoutSec <= 0 {
		c.Mongo.ConnectTimeoutSec = 15
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Finnhub.TimeoutSec <= 0 {
		c.Finnhub.TimeoutSec = 10
	}
	if c.Finnhub.RequestsPerSec <= 0 {
		c.Finnhub.RequestsPerSec = 10
	}
	if c.Finnhub.Burst <= 0 {
		c.Finnhub.Burst = c.Finnhub.RequestsPerSec
	}
	if c.Finnhub.MaxConcurrency <= 0 {
		c.Finnhub.MaxConcurrency = 8
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "StockWatch"
	}
	if c.Schedule.ScanCron == "" {
		// Every 15 minutes during US market hours, weekdays.
		c.Schedule.ScanCron = "0 0,15,30,45 9-16 * * 1-5"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if c.Schedule.ScanTimeoutSec <= 0 {
		c.Schedule.ScanTimeoutSec = 300
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 30
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		c.Finnhub.BaseURL = v
	}
	if v := os.Getenv("FINNHUB_CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Finnhub.CacheTTLSec = n
		}
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.SendGrid.APIKey = v
	}
	if v := os.Getenv("SENDGRID_FROM_EMAIL"); v != "" {
		c.SendGrid.FromEmail = v
	}
	if v := os.Getenv("SENDGRID_FROM_NAME"); v != "" {
		c.SendGrid.FromName = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("config: mongo.uri is required")
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("config: finnhub.api_key is required")
	}
	if c.SendGrid.APIKey == "" {
		return fmt.Errorf("config: sendgrid.api_key is required")
	}
	if c.SendGrid.FromEmail == "" {
		return fmt.Errorf("config: sendgrid.from_email is required")
	}
	return nil
}

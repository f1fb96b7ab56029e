package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all subguard configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Display   DisplayConfig   `mapstructure:"display"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	ReadTimeout    string `mapstructure:"read_timeout"`
	WriteTimeout   string `mapstructure:"write_timeout"`
	RequestTimeout string `mapstructure:"request_timeout"`
	MaxUploadSize  int64  `mapstructure:"max_upload_size"`
}

// Timeouts parses the configured durations.
func (s ServerConfig) Timeouts() (read, write, request time.Duration, err error) {
	if read, err = time.ParseDuration(s.ReadTimeout); err != nil {
		return 0, 0, 0, fmt.Errorf("parse server.read_timeout: %w", err)
	}
	if write, err = time.ParseDuration(s.WriteTimeout); err != nil {
		return 0, 0, 0, fmt.Errorf("parse server.write_timeout: %w", err)
	}
	if request, err = time.ParseDuration(s.RequestTimeout); err != nil {
		return 0, 0, 0, fmt.Errorf("parse server.request_timeout: %w", err)
	}
	return read, write, request, nil
}

// EngineConfig seeds the analytics thresholds of a fresh database. Stored
// settings take precedence once saved.
type EngineConfig struct {
	UnusedThresholdDays int `mapstructure:"unused_threshold_days"`
	RenewalWindowDays   int `mapstructure:"renewal_window_days"`
}

// RemindersConfig defines scheduled renewal reminders.
type RemindersConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// CatalogConfig points at an optional category catalog file.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

// DisplayConfig defines CLI output settings.
type DisplayConfig struct {
	Currency string `mapstructure:"currency"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".subguard"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".subguard", "subguard.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_upload_size", 5*1024*1024) // 5 MB
	v.SetDefault("engine.unused_threshold_days", 90)
	v.SetDefault("engine.renewal_window_days", 30)
	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.schedule", "0 9 * * *")
	v.SetDefault("alerts.slack.channel", "#subscriptions")
	v.SetDefault("display.currency", "USD")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("SUBGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Engine.UnusedThresholdDays < 1 {
		return fmt.Errorf("engine.unused_threshold_days must be >= 1, got %d", c.Engine.UnusedThresholdDays)
	}
	if c.Engine.RenewalWindowDays < 1 {
		return fmt.Errorf("engine.renewal_window_days must be >= 1, got %d", c.Engine.RenewalWindowDays)
	}
	if _, _, _, err := c.Server.Timeouts(); err != nil {
		return err
	}
	if c.Alerts.Slack.Enabled && c.Alerts.Slack.WebhookURL == "" {
		return fmt.Errorf("alerts.slack.webhook_url is required when slack alerts are enabled")
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return fmt.Errorf("alerts.webhook.url is required when webhook alerts are enabled")
	}
	return nil
}

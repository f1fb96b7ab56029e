package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/alerts"
	"github.com/ogulcanaydogan/subguard/pkg/catalog"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfgFile    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "subguard",
	Short: "subguard - Subscription spend tracking and dead-weight detection",
	Long: `subguard tracks recurring subscriptions and turns them into spend analytics:
normalized monthly and yearly costs, category breakdowns, renewal urgency,
unused "dead weight" and cancellation recommendations. It can import and export
CSV, JSON and XLSX, serve a JSON API with Prometheus metrics, and push renewal
reminders to Slack or a webhook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.subguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initCatalog loads the category catalog file, or the built-in categories when none is configured.
func initCatalog(cfg *config.Config) (*catalog.Registry, error) {
	if cfg.Catalog.File == "" {
		return catalog.NewDefault(), nil
	}
	f, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	return catalog.FromFile(f)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// initTracker creates a fully wired subscription tracker.
func initTracker(cfg *config.Config) (*tracker.Tracker, storage.Storage, error) {
	logger := newLogger(cfg)

	cat, err := initCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	t := tracker.New(store, cat, tracker.SystemClock, logger)

	defaults := model.DefaultSettings()
	defaults.UnusedThresholdDays = cfg.Engine.UnusedThresholdDays
	defaults.RenewalWindowDays = cfg.Engine.RenewalWindowDays
	if err := t.SetDefaults(defaults); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("apply engine defaults: %w", err)
	}

	return t, store, nil
}

// withTracker loads config, wires a tracker and closes its storage when fn returns.
func withTracker(fn func(cfg *config.Config, t *tracker.Tracker) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, store, err := initTracker(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(cfg, t)
}

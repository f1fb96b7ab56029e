package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/server"
	"github.com/ogulcanaydogan/subguard/pkg/metrics"
	"github.com/ogulcanaydogan/subguard/pkg/reminder"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API with metrics and scheduled reminders",
	Long: `Serve the subscription API, /healthz and Prometheus /metrics. When reminders are
enabled in the config, renewal reminders are also sent on their cron schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	logger := newLogger(cfg)
	readTimeout, writeTimeout, requestTimeout, err := cfg.Server.Timeouts()
	if err != nil {
		return err
	}

	t, store, err := initTracker(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(nil)
	rem := reminder.New(t, initNotifiers(cfg), logger)

	opts := []server.Option{
		server.WithMetrics(collector),
		server.WithReminder(rem),
		server.WithRequestTimeout(requestTimeout),
		server.WithMaxUploadSize(cfg.Server.MaxUploadSize),
	}
	apiServer := server.NewServer(t, logger, opts...)

	if cfg.Reminders.Enabled {
		sched := reminder.NewScheduler(rem, cfg.Reminders.Schedule, logger)
		sched.OnRun(collector.ObserveReminder)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start reminder scheduler: %w", err)
		}
		defer sched.Stop()
		if next := sched.NextRun(); next != nil {
			logger.Info("next reminder run", "at", next.Format(time.RFC3339))
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("subguard started", "listen", cfg.Server.Listen, "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

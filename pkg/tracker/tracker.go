// Package tracker is the service layer between storage and the economics engine.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/subguard/pkg/catalog"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/transfer"
)

// Tracker is the main entry point for managing and analyzing subscriptions.
type Tracker struct {
	storage  storage.Storage
	catalog  *catalog.Registry
	clock    Clock
	logger   *slog.Logger
	defaults Settings
}

// New creates a tracker with the given dependencies. A nil catalog uses the
// built-in categories and a nil clock uses the system clock.
func New(store storage.Storage, cat *catalog.Registry, clock Clock, logger *slog.Logger) *Tracker {
	if cat == nil {
		cat = catalog.NewDefault()
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Tracker{
		storage:  store,
		catalog:  cat,
		clock:    clock,
		logger:   logger,
		defaults: model.DefaultSettings(),
	}
}

// SetDefaults replaces the settings reported before any have been saved.
func (t *Tracker) SetDefaults(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", economics.ErrInvalidInput, err)
	}
	s.UpdatedAt = time.Time{}
	t.defaults = s
	return nil
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.clock().UTC()
}

// Catalog returns the category registry used to canonicalize labels.
func (t *Tracker) Catalog() *catalog.Registry {
	return t.catalog
}

// prepare canonicalizes and validates a record before it is written.
func (t *Tracker) prepare(sub *Subscription) error {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Category = t.catalog.Canonicalize(sub.Category)
	if sub.BillingCycle == "" {
		sub.BillingCycle = model.CycleMonthly
	}
	if sub.Status == "" {
		sub.Status = model.StatusActive
	}
	if !sub.NextBillingDate.IsZero() {
		sub.NextBillingDate = model.Date(sub.NextBillingDate)
	}
	if sub.LastUsed != nil {
		d := model.Date(*sub.LastUsed)
		sub.LastUsed = &d
	}
	return economics.ValidateRecord(*sub)
}

// Add creates a new subscription.
func (t *Tracker) Add(ctx context.Context, sub *Subscription) error {
	if err := t.prepare(sub); err != nil {
		return err
	}
	sub.ID = uuid.New().String()
	sub.CreatedAt = t.Now()
	sub.UpdatedAt = sub.CreatedAt

	if err := t.storage.CreateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("store subscription: %w", err)
	}

	t.logger.Info("subscription added",
		"subscription", sub.ID,
		"name", sub.Name,
		"cost", sub.Cost,
		"billing_cycle", sub.BillingCycle,
		"category", sub.Category,
	)
	return nil
}

// Get returns one subscription.
func (t *Tracker) Get(ctx context.Context, id string) (*Subscription, error) {
	return t.storage.GetSubscription(ctx, id)
}

// List returns subscriptions matching the filter. The category filter is
// canonicalized the same way stored categories are.
func (t *Tracker) List(ctx context.Context, filter ListFilter) ([]Subscription, error) {
	if filter.Category != "" {
		filter.Category = t.catalog.Canonicalize(filter.Category)
	}
	return t.storage.ListSubscriptions(ctx, filter)
}

// Update replaces an existing subscription, keeping its creation time.
func (t *Tracker) Update(ctx context.Context, sub *Subscription) error {
	existing, err := t.storage.GetSubscription(ctx, sub.ID)
	if err != nil {
		return err
	}
	if err := t.prepare(sub); err != nil {
		return err
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = t.Now()

	if err := t.storage.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	t.logger.Info("subscription updated", "subscription", sub.ID, "status", sub.Status)
	return nil
}

// Delete removes a subscription.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.storage.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	t.logger.Info("subscription deleted", "subscription", id)
	return nil
}

// MarkUsed records today as the subscription's last used date.
func (t *Tracker) MarkUsed(ctx context.Context, id string) (*Subscription, error) {
	if err := t.storage.MarkUsed(ctx, id, t.Now()); err != nil {
		return nil, err
	}
	t.logger.Debug("subscription marked used", "subscription", id)
	return t.storage.GetSubscription(ctx, id)
}

// Import decodes subscriptions with the given codec and stores them in one
// transaction. Rows that fail decoding or validation are skipped and reported.
func (t *Tracker) Import(ctx context.Context, codec transfer.Codec, r io.Reader) (*ImportReport, error) {
	res, err := codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", economics.ErrInvalidInput, err)
	}

	report := &ImportReport{Skipped: res.Skipped}
	now := t.Now()
	valid := make([]Subscription, 0, len(res.Subscriptions))
	for i := range res.Subscriptions {
		sub := res.Subscriptions[i]
		if err := t.prepare(&sub); err != nil {
			report.Skipped = append(report.Skipped, transfer.SkippedRow{Reason: fmt.Sprintf("%s: %v", sub.Name, err)})
			continue
		}
		sub.ID = uuid.New().String()
		sub.CreatedAt = now
		sub.UpdatedAt = now
		valid = append(valid, sub)
	}

	n, err := t.storage.ImportSubscriptions(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("import subscriptions: %w", err)
	}
	report.Imported = n

	t.logger.Info("subscriptions imported",
		"format", codec.Name(),
		"imported", n,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// Export writes the subscriptions matching the filter with the given codec.
func (t *Tracker) Export(ctx context.Context, codec transfer.Codec, w io.Writer, filter ListFilter) (int, error) {
	subs, err := t.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := codec.Encode(w, subs); err != nil {
		return 0, fmt.Errorf("export subscriptions: %w", err)
	}
	return len(subs), nil
}

// Settings returns the stored user settings, or the defaults when none have
// been saved yet.
func (t *Tracker) Settings(ctx context.Context) (Settings, error) {
	s, err := t.storage.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if s.UpdatedAt.IsZero() {
		return t.defaults, nil
	}
	return s, nil
}

// UpdateSettings validates and stores user settings.
func (t *Tracker) UpdateSettings(ctx context.Context, s Settings) (Settings, error) {
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", economics.ErrInvalidInput, err)
	}
	s.UpdatedAt = t.Now()
	if err := t.storage.SaveSettings(ctx, s); err != nil {
		return Settings{}, err
	}
	t.logger.Info("settings updated",
		"unused_threshold_days", s.UnusedThresholdDays,
		"renewal_window_days", s.RenewalWindowDays,
		"renewal_reminder_days", s.RenewalReminderDays,
	)
	return s, nil
}

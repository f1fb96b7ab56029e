// Package reminder pushes renewal and dead-weight notifications, on demand or
// on a cron schedule.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/alerts"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// Source supplies the views a reminder run reports on. *tracker.Tracker implements it.
type Source interface {
	Now() time.Time
	Settings(ctx context.Context) (model.Settings, error)
	RenewalsWithin(ctx context.Context, days int) ([]economics.Renewal, error)
	DeadWeight(ctx context.Context) (economics.DeadWeightReport, error)
}

// Result summarizes one reminder run.
type Result struct {
	Disabled    bool `json:"disabled"`
	RenewalsDue int  `json:"renewals_due"`
	DeadWeight  int  `json:"dead_weight"`
	AlertsSent  int  `json:"alerts_sent"`
}

// Reminder builds alerts from tracker views and dispatches them.
type Reminder struct {
	source    Source
	notifiers []alerts.Notifier
	logger    *slog.Logger
}

// New creates a reminder.
func New(source Source, notifiers []alerts.Notifier, logger *slog.Logger) *Reminder {
	return &Reminder{
		source:    source,
		notifiers: notifiers,
		logger:    logger.With("component", "reminder"),
	}
}

// Run checks for due renewals and dead weight and notifies about each. Nothing is
// sent when notifications are disabled in the user settings.
func (r *Reminder) Run(ctx context.Context) (*Result, error) {
	settings, err := r.source.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.EmailNotifications {
		r.logger.Debug("notifications disabled, skipping reminder run")
		return &Result{Disabled: true}, nil
	}

	due, err := r.source.RenewalsWithin(ctx, settings.RenewalReminderDays)
	if err != nil {
		return nil, fmt.Errorf("find due renewals: %w", err)
	}
	dead, err := r.source.DeadWeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect dead weight: %w", err)
	}

	res := &Result{RenewalsDue: len(due), DeadWeight: len(dead.Records)}
	now := r.source.Now()

	var pending []alerts.Alert
	if len(due) > 0 {
		pending = append(pending, RenewalAlert(due, settings.RenewalReminderDays, now))
	}
	if len(dead.Records) > 0 {
		pending = append(pending, DeadWeightAlert(dead, now))
	}

	if len(r.notifiers) == 0 {
		if len(pending) > 0 {
			r.logger.Warn("no alert targets configured, reminders not delivered", "alerts", len(pending))
		}
		return res, nil
	}

	var errs []error
	for _, a := range pending {
		if err := alerts.Broadcast(ctx, r.notifiers, a); err != nil {
			r.logger.Error("alert delivery failed", "kind", a.Kind, "error", err)
			errs = append(errs, err)
			continue
		}
		res.AlertsSent++
	}

	r.logger.Info("reminder run completed",
		"renewals_due", res.RenewalsDue,
		"dead_weight", res.DeadWeight,
		"alerts_sent", res.AlertsSent,
	)
	return res, errors.Join(errs...)
}

// RenewalAlert summarizes renewals due within the reminder window.
func RenewalAlert(due []economics.Renewal, days int, now time.Time) alerts.Alert {
	a := alerts.Alert{
		Kind:        alerts.KindRenewalDue,
		Level:       alerts.AlertInfo,
		Title:       "Upcoming renewals",
		Message:     fmt.Sprintf("%d subscription(s) renew within %d days", len(due), days),
		Items:       make([]alerts.AlertItem, 0, len(due)),
		GeneratedAt: now,
	}
	for _, r := range due {
		switch r.Urgency {
		case economics.UrgencyOverdue:
			a.Level = alerts.AlertCritical
		case economics.UrgencyUrgent:
			if a.Level == alerts.AlertInfo {
				a.Level = alerts.AlertWarning
			}
		}
		a.Items = append(a.Items, alerts.AlertItem{
			SubscriptionID: r.Subscription.ID,
			Name:           r.Subscription.Name,
			Detail:         fmt.Sprintf("renews %s (%s)", strings.ToLower(economics.RelativeLabel(r.DaysUntil)), model.FormatDate(r.Subscription.NextBillingDate)),
			MonthlyCost:    r.MonthlyCost,
		})
		a.MonthlyTotal += r.MonthlyCost
	}
	return a
}

// DeadWeightAlert summarizes subscriptions unused beyond the threshold.
func DeadWeightAlert(report economics.DeadWeightReport, now time.Time) alerts.Alert {
	a := alerts.Alert{
		Kind:  alerts.KindDeadWeight,
		Level: alerts.AlertWarning,
		Title: "Unused subscriptions",
		Message: fmt.Sprintf("%d subscription(s) unused for %d+ days, %.2f/month could be saved",
			len(report.Records), report.ThresholdDays, report.MonthlySavings),
		Items:        make([]alerts.AlertItem, 0, len(report.Records)),
		MonthlyTotal: report.MonthlySavings,
		GeneratedAt:  now,
	}
	for _, f := range report.Records {
		a.Items = append(a.Items, alerts.AlertItem{
			SubscriptionID: f.Subscription.ID,
			Name:           f.Subscription.Name,
			Detail:         f.Reason,
			MonthlyCost:    f.MonthlyCost,
		})
	}
	return a
}

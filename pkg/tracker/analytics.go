package tracker

import (
	"context"
	"fmt"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// EngineConfig builds the engine configuration from stored settings and the clock.
func (t *Tracker) EngineConfig(ctx context.Context) (economics.Config, error) {
	s, err := t.Settings(ctx)
	if err != nil {
		return economics.Config{}, fmt.Errorf("load settings: %w", err)
	}
	return economics.ConfigFromSettings(t.Now(), s), nil
}

// load fetches every stored subscription together with the engine configuration.
func (t *Tracker) load(ctx context.Context) ([]Subscription, economics.Config, error) {
	cfg, err := t.EngineConfig(ctx)
	if err != nil {
		return nil, economics.Config{}, err
	}
	subs, err := t.storage.ListSubscriptions(ctx, model.ListFilter{})
	if err != nil {
		return nil, economics.Config{}, fmt.Errorf("load subscriptions: %w", err)
	}
	return subs, cfg, nil
}

// Overview returns the headline spend totals.
func (t *Tracker) Overview(ctx context.Context) (economics.Overview, error) {
	subs, _, err := t.load(ctx)
	if err != nil {
		return economics.Overview{}, err
	}
	return economics.Summarize(subs)
}

// Categories returns monthly spend grouped by category.
func (t *Tracker) Categories(ctx context.Context) (economics.CategoryBreakdown, error) {
	subs, _, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return economics.AggregateByCategory(subs)
}

// DeadWeight returns active subscriptions unused beyond the configured threshold.
func (t *Tracker) DeadWeight(ctx context.Context) (economics.DeadWeightReport, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return economics.DeadWeightReport{}, err
	}
	return economics.DetectDeadWeight(subs, cfg)
}

// Trends returns monthly totals over the last months, bucketed by field. When
// fill is set, months without records are included with zero totals.
func (t *Tracker) Trends(ctx context.Context, months int, field economics.DateField, fill bool) ([]economics.MonthTotal, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	points, err := economics.AggregateTrends(subs, months, cfg, field)
	if err != nil {
		return nil, err
	}
	if fill {
		points = economics.FillMonths(points, months, cfg.Now)
	}
	return points, nil
}

// Recommendations returns cancellation suggestions for dead-weight subscriptions.
func (t *Tracker) Recommendations(ctx context.Context) (economics.RecommendationSet, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return economics.RecommendationSet{}, err
	}
	return economics.BuildRecommendations(subs, cfg)
}

// Upcoming returns renewals inside the configured renewal window.
func (t *Tracker) Upcoming(ctx context.Context) ([]economics.Renewal, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return economics.UpcomingRenewals(subs, cfg)
}

// RenewalsWithin returns renewals due within the given number of days,
// overdue ones included.
func (t *Tracker) RenewalsWithin(ctx context.Context, days int) ([]economics.Renewal, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	cfg.RenewalWindowDays = days
	return economics.UpcomingRenewals(subs, cfg)
}

// Snapshot holds the dashboard views computed from one read of storage.
type Snapshot struct {
	Overview   economics.Overview          `json:"overview"`
	Categories economics.CategoryBreakdown `json:"categories"`
	DeadWeight economics.DeadWeightReport  `json:"dead_weight"`
	Upcoming   []economics.Renewal         `json:"upcoming"`
}

// Snapshot computes every dashboard view from a single load.
func (t *Tracker) Snapshot(ctx context.Context) (*Snapshot, error) {
	subs, cfg, err := t.load(ctx)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if snap.Overview, err = economics.Summarize(subs); err != nil {
		return nil, err
	}
	if snap.Categories, err = economics.AggregateByCategory(subs); err != nil {
		return nil, err
	}
	if snap.DeadWeight, err = economics.DetectDeadWeight(subs, cfg); err != nil {
		return nil, err
	}
	if snap.Upcoming, err = economics.UpcomingRenewals(subs, cfg); err != nil {
		return nil, err
	}
	return &snap, nil
}

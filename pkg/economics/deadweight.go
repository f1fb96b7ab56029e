package economics

import (
	"fmt"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// NeverUsed is the DaysUnused value of a record with no recorded usage.
const NeverUsed = -1

// FlaggedSubscription is an active subscription that has gone unused for too long.
type FlaggedSubscription struct {
	Subscription model.Subscription `json:"subscription"`
	DaysUnused   int                `json:"days_unused"`
	Reason       string             `json:"reason"`
	MonthlyCost  float64            `json:"monthly_cost"`
}

// DeadWeightReport lists flagged subscriptions and what canceling them would save.
type DeadWeightReport struct {
	Records        []FlaggedSubscription `json:"records"`
	MonthlySavings float64               `json:"monthly_savings"`
	YearlySavings  float64               `json:"yearly_savings"`
	ThresholdDays  int                   `json:"threshold_days"`
}

// DetectDeadWeight flags active records never used or unused for more than
// cfg.UnusedThresholdDays calendar days. Flagged records keep input order.
func DetectDeadWeight(records []model.Subscription, cfg Config) (DeadWeightReport, error) {
	if err := cfg.requireThreshold("detect dead weight"); err != nil {
		return DeadWeightReport{}, err
	}
	if err := validateAll(records); err != nil {
		return DeadWeightReport{}, err
	}

	report := DeadWeightReport{
		Records:       make([]FlaggedSubscription, 0),
		ThresholdDays: cfg.UnusedThresholdDays,
	}
	for _, r := range records {
		flagged, ok := flag(r, cfg)
		if !ok {
			continue
		}
		report.Records = append(report.Records, flagged)
		report.MonthlySavings += flagged.MonthlyCost
	}
	report.YearlySavings = report.MonthlySavings * MonthsPerYear
	return report, nil
}

func flag(r model.Subscription, cfg Config) (FlaggedSubscription, bool) {
	if !r.IsActive() {
		return FlaggedSubscription{}, false
	}
	f := FlaggedSubscription{
		Subscription: cloneRecord(r),
		MonthlyCost:  NormalizeCost(r).Monthly,
	}
	if r.LastUsed == nil {
		f.DaysUnused = NeverUsed
		f.Reason = "never used"
		return f, true
	}
	days := DaysSince(*r.LastUsed, cfg.Now)
	if days <= cfg.UnusedThresholdDays {
		return FlaggedSubscription{}, false
	}
	f.DaysUnused = days
	f.Reason = fmt.Sprintf("unused for %d days", days)
	return f, true
}

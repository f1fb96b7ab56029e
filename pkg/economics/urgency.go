package economics

import (
	"fmt"
	"sort"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// UrgencyLevel buckets how soon a subscription renews.
type UrgencyLevel string

const (
	UrgencyOverdue  UrgencyLevel = "overdue"
	UrgencyUrgent   UrgencyLevel = "urgent"
	UrgencySoon     UrgencyLevel = "soon"
	UrgencyUpcoming UrgencyLevel = "upcoming"
	UrgencyLater    UrgencyLevel = "later"
)

// ClassifyUrgency buckets a renewal date relative to now using whole calendar days.
func ClassifyUrgency(nextBillingDate, now time.Time, renewalWindowDays int) (UrgencyLevel, error) {
	if renewalWindowDays < 1 {
		return "", preconditionError("classify urgency", "renewal window must be >= 1 day, got %d", renewalWindowDays)
	}
	if nextBillingDate.IsZero() {
		return "", inputError("", "next_billing_date", "must be set")
	}
	return classifyDays(DaysUntil(nextBillingDate, now), renewalWindowDays), nil
}

func classifyDays(daysUntil, window int) UrgencyLevel {
	switch {
	case daysUntil <= 0:
		return UrgencyOverdue
	case daysUntil <= UrgentDays:
		return UrgencyUrgent
	case daysUntil <= SoonDays && daysUntil <= window:
		return UrgencySoon
	case daysUntil <= window:
		return UrgencyUpcoming
	default:
		return UrgencyLater
	}
}

// RecordUrgency classifies an active record. Urgency is undefined for records that are
// not active and for records without a next billing date.
func RecordUrgency(r model.Subscription, cfg Config) (UrgencyLevel, error) {
	const op = "classify urgency"
	if err := cfg.requireWindow(op); err != nil {
		return "", err
	}
	if err := ValidateRecord(r); err != nil {
		return "", err
	}
	if !r.IsActive() {
		return "", preconditionError(op, "record %s has status %s, want active", r.ID, r.Status)
	}
	if r.NextBillingDate.IsZero() {
		return "", inputError(r.ID, "next_billing_date", "must be set")
	}
	return classifyDays(DaysUntil(r.NextBillingDate, cfg.Now), cfg.RenewalWindowDays), nil
}

// Renewal is one row of the upcoming renewals view.
type Renewal struct {
	Subscription model.Subscription `json:"subscription"`
	DaysUntil    int                `json:"days_until"`
	Urgency      UrgencyLevel       `json:"urgency"`
	MonthlyCost  float64            `json:"monthly_cost"`
}

// UpcomingRenewals lists active records renewing within the renewal window, overdue
// ones included, soonest first. Records without a next billing date are skipped.
func UpcomingRenewals(records []model.Subscription, cfg Config) ([]Renewal, error) {
	if err := cfg.requireWindow("upcoming renewals"); err != nil {
		return nil, err
	}
	if err := validateAll(records); err != nil {
		return nil, err
	}

	renewals := make([]Renewal, 0)
	for _, r := range records {
		if !r.IsActive() || r.NextBillingDate.IsZero() {
			continue
		}
		days := DaysUntil(r.NextBillingDate, cfg.Now)
		if days > cfg.RenewalWindowDays {
			continue
		}
		renewals = append(renewals, Renewal{
			Subscription: cloneRecord(r),
			DaysUntil:    days,
			Urgency:      classifyDays(days, cfg.RenewalWindowDays),
			MonthlyCost:  NormalizeCost(r).Monthly,
		})
	}

	sort.SliceStable(renewals, func(i, j int) bool {
		a, b := renewals[i], renewals[j]
		if a.DaysUntil != b.DaysUntil {
			return a.DaysUntil < b.DaysUntil
		}
		if a.Subscription.Name != b.Subscription.Name {
			return a.Subscription.Name < b.Subscription.Name
		}
		return a.Subscription.ID < b.Subscription.ID
	})
	return renewals, nil
}

// RelativeLabel renders a calendar-day offset as "Today", "Tomorrow", "In N days",
// "Yesterday" or "N days ago".
func RelativeLabel(daysUntil int) string {
	switch {
	case daysUntil == 0:
		return "Today"
	case daysUntil == 1:
		return "Tomorrow"
	case daysUntil == -1:
		return "Yesterday"
	case daysUntil > 1:
		return fmt.Sprintf("In %d days", daysUntil)
	default:
		return fmt.Sprintf("%d days ago", -daysUntil)
	}
}

// Package economics normalizes subscription costs and derives spend views from them.
//
// Every function is a pure calculation over caller-supplied records: nothing reads
// the system clock, performs I/O or keeps state between calls, so all functions are
// safe for concurrent use and return identical output for identical input.
package economics

import (
	"math"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

const (
	// WeeksPerMonth is the single weekly-to-monthly factor (52 weeks / 12 months).
	WeeksPerMonth = 52.0 / 12.0

	MonthsPerYear    = 12
	MonthsPerQuarter = 3

	DefaultUnusedThresholdDays = 90
	DefaultRenewalWindowDays   = 30

	// UrgentDays and SoonDays bound the urgent and soon renewal buckets.
	UrgentDays = 7
	SoonDays   = 30
)

// Config carries the reference time and thresholds for one call.
type Config struct {
	Now                 time.Time
	UnusedThresholdDays int
	RenewalWindowDays   int
}

// DefaultConfig returns a config with the default thresholds at the given time.
func DefaultConfig(now time.Time) Config {
	return Config{
		Now:                 now,
		UnusedThresholdDays: DefaultUnusedThresholdDays,
		RenewalWindowDays:   DefaultRenewalWindowDays,
	}
}

// ConfigFromSettings builds an engine config from persisted user settings.
func ConfigFromSettings(now time.Time, s model.Settings) Config {
	return Config{
		Now:                 now,
		UnusedThresholdDays: s.UnusedThresholdDays,
		RenewalWindowDays:   s.RenewalWindowDays,
	}
}

func (c Config) requireNow(op string) error {
	if c.Now.IsZero() {
		return preconditionError(op, "reference time must be set")
	}
	return nil
}

func (c Config) requireThreshold(op string) error {
	if err := c.requireNow(op); err != nil {
		return err
	}
	if c.UnusedThresholdDays < 1 {
		return preconditionError(op, "unused threshold must be >= 1 day, got %d", c.UnusedThresholdDays)
	}
	return nil
}

func (c Config) requireWindow(op string) error {
	if err := c.requireNow(op); err != nil {
		return err
	}
	if c.RenewalWindowDays < 1 {
		return preconditionError(op, "renewal window must be >= 1 day, got %d", c.RenewalWindowDays)
	}
	return nil
}

// DaysBetween returns the number of calendar days from a to b. Time of day is ignored.
func DaysBetween(a, b time.Time) int {
	return int(model.Date(b).Sub(model.Date(a)) / (24 * time.Hour))
}

// DaysUntil returns the calendar days from now until date; negative when date has passed.
func DaysUntil(date, now time.Time) int {
	return DaysBetween(now, date)
}

// DaysSince returns the calendar days elapsed from date until now.
func DaysSince(date, now time.Time) int {
	return DaysBetween(date, now)
}

// ValidateRecord checks the fields every operation relies on.
func ValidateRecord(r model.Subscription) error {
	if r.Name == "" {
		return inputError(r.ID, "name", "must not be empty")
	}
	if math.IsNaN(r.Cost) || math.IsInf(r.Cost, 0) {
		return inputError(r.ID, "cost", "must be a finite number")
	}
	if r.Cost < 0 {
		return inputError(r.ID, "cost", "must not be negative")
	}
	if !r.Status.Valid() {
		return inputError(r.ID, "status", "unknown status "+string(r.Status))
	}
	return nil
}

func validateAll(records []model.Subscription) error {
	for _, r := range records {
		if err := ValidateRecord(r); err != nil {
			return err
		}
	}
	return nil
}

func cloneRecord(r model.Subscription) model.Subscription {
	if r.LastUsed != nil {
		lu := *r.LastUsed
		r.LastUsed = &lu
	}
	return r
}

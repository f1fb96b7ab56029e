package tracker

import (
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/transfer"
)

// Re-export types from model package for convenience.
type (
	Subscription = model.Subscription
	Settings     = model.Settings
	ListFilter   = model.ListFilter
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Imported int                   `json:"imported"`
	Skipped  []transfer.SkippedRow `json:"skipped"`
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for storage and exchange.
const DateLayout = "2006-01-02"

// BillingCycle defines how often a subscription charges its cost.
type BillingCycle string

const (
	CycleWeekly    BillingCycle = "weekly"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"

	// CycleUnknown marks any unrecognized cycle value. Its cost is treated as already monthly.
	CycleUnknown BillingCycle = "unknown"
)

// Known reports whether c is one of the four recognized cycles.
func (c BillingCycle) Known() bool {
	switch c {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	}
	return false
}

// Kind folds unrecognized values onto CycleUnknown.
func (c BillingCycle) Kind() BillingCycle {
	if c.Known() {
		return c
	}
	return CycleUnknown
}

// ParseBillingCycle normalizes case and whitespace. Unrecognized input is kept verbatim
// so that it survives a store/export round trip.
func ParseBillingCycle(s string) BillingCycle {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	if c.Known() {
		return c
	}
	return BillingCycle(strings.TrimSpace(s))
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
	StatusPaused    Status = "paused"
)

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCancelled, StatusPaused:
		return true
	}
	return false
}

// ParseStatus parses a status label. Empty input defaults to active.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusActive, nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Subscription is a single recurring charge being tracked.
type Subscription struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Cost            float64      `json:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	Category        string       `json:"category"`
	NextBillingDate time.Time    `json:"next_billing_date"`
	LastUsed        *time.Time   `json:"last_used,omitempty"`
	Status          Status       `json:"status"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsActive reports whether the subscription is currently charging.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// Settings holds the user-adjustable thresholds persisted alongside subscriptions.
type Settings struct {
	EmailNotifications  bool      `json:"email_notifications"`
	RenewalReminderDays int       `json:"renewal_reminder_days"`
	UnusedThresholdDays int       `json:"unused_threshold_days"`
	RenewalWindowDays   int       `json:"renewal_window_days"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings a fresh database starts with.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications:  true,
		RenewalReminderDays: 7,
		UnusedThresholdDays: 90,
		RenewalWindowDays:   30,
	}
}

// Validate checks that every threshold is at least one day.
func (s Settings) Validate() error {
	if s.RenewalReminderDays < 1 {
		return fmt.Errorf("renewal_reminder_days must be >= 1, got %d", s.RenewalReminderDays)
	}
	if s.UnusedThresholdDays < 1 {
		return fmt.Errorf("unused_threshold_days must be >= 1, got %d", s.UnusedThresholdDays)
	}
	if s.RenewalWindowDays < 1 {
		return fmt.Errorf("renewal_window_days must be >= 1, got %d", s.RenewalWindowDays)
	}
	return nil
}

// ListFilter controls which subscriptions are returned from storage.
type ListFilter struct {
	Status   Status `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
}

// Date truncates t to midnight UTC of its own calendar date.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date. A full RFC 3339 timestamp is also
// accepted and truncated to its date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(t), nil
}

// ParseOptionalDate returns nil for empty input.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a calendar date, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatOptionalDate renders nil as an empty string.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

package alerts

import (
	"context"
	"time"
)

// AlertLevel indicates the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"     // Renewals coming up
	AlertWarning  AlertLevel = "warning"  // Renewal within a week, or money going to unused subscriptions
	AlertCritical AlertLevel = "critical" // Renewal date already passed
)

// AlertKind identifies what an alert is about.
type AlertKind string

const (
	KindRenewalDue AlertKind = "renewal_due"
	KindDeadWeight AlertKind = "dead_weight"
)

// AlertItem is one subscription mentioned in an alert.
type AlertItem struct {
	SubscriptionID string  `json:"subscription_id"`
	Name           string  `json:"name"`
	Detail         string  `json:"detail"`
	MonthlyCost    float64 `json:"monthly_cost"`
}

// Alert represents a subscription notification.
type Alert struct {
	Kind         AlertKind   `json:"kind"`
	Level        AlertLevel  `json:"level"`
	Title        string      `json:"title"`
	Message      string      `json:"message"`
	Items        []AlertItem `json:"items"`
	MonthlyTotal float64     `json:"monthly_total"`
	GeneratedAt  time.Time   `json:"generated_at"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// ErrNotFound is returned when a subscription does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the persistence layer for subscriptions and user settings.
type Storage interface {
	// CreateSubscription persists a new subscription, assigning an ID when empty.
	CreateSubscription(ctx context.Context, sub *model.Subscription) error

	// GetSubscription retrieves a subscription by ID.
	GetSubscription(ctx context.Context, id string) (*model.Subscription, error)

	// ListSubscriptions returns subscriptions matching the filter, soonest renewal first.
	ListSubscriptions(ctx context.Context, filter model.ListFilter) ([]model.Subscription, error)

	// UpdateSubscription replaces every mutable field of an existing subscription.
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error

	// DeleteSubscription removes a subscription.
	DeleteSubscription(ctx context.Context, id string) error

	// MarkUsed sets the last used date of a subscription.
	MarkUsed(ctx context.Context, id string, day time.Time) error

	// ImportSubscriptions inserts all subscriptions in one transaction.
	ImportSubscriptions(ctx context.Context, subs []model.Subscription) (int, error)

	// GetSettings returns the stored settings, or the defaults when none were saved.
	GetSettings(ctx context.Context) (model.Settings, error)

	// SaveSettings creates or replaces the stored settings.
	SaveSettings(ctx context.Context, settings model.Settings) error

	// Close releases resources.
	Close() error
}

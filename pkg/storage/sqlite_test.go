package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestSQLite_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lastUsed := date(t, "2025-05-01")
	sub := &model.Subscription{
		Name:            "Figma",
		Cost:            15,
		BillingCycle:    model.CycleMonthly,
		Category:        "Design Tools",
		NextBillingDate: date(t, "2025-07-01"),
		LastUsed:        &lastUsed,
		Notes:           "team plan",
	}
	require.NoError(t, db.CreateSubscription(ctx, sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.False(t, sub.CreatedAt.IsZero())

	got, err := db.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Figma", got.Name)
	assert.Equal(t, 15.0, got.Cost)
	assert.Equal(t, model.CycleMonthly, got.BillingCycle)
	assert.Equal(t, "Design Tools", got.Category)
	assert.Equal(t, date(t, "2025-07-01"), got.NextBillingDate)
	require.NotNil(t, got.LastUsed)
	assert.Equal(t, lastUsed, *got.LastUsed)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.Equal(t, "team plan", got.Notes)
}

func TestSQLite_GetSubscription_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSubscription(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_ListSubscriptions_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subs := []*model.Subscription{
		{Name: "Slack", Cost: 8, Category: "Communication", NextBillingDate: date(t, "2025-07-10")},
		{Name: "Zoom", Cost: 15, Category: "Communication", NextBillingDate: date(t, "2025-06-20"), Status: model.StatusCancelled},
		{Name: "GitHub", Cost: 4, Category: "Development", NextBillingDate: date(t, "2025-06-25")},
		{Name: "Undated", Cost: 1, Category: "Other"},
	}
	for _, s := range subs {
		require.NoError(t, db.CreateSubscription(ctx, s))
	}

	all, err := db.ListSubscriptions(ctx, model.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Zoom", all[0].Name)
	assert.Equal(t, "GitHub", all[1].Name)
	assert.Equal(t, "Slack", all[2].Name)
	assert.Equal(t, "Undated", all[3].Name)
	assert.Nil(t, all[3].LastUsed)
	assert.True(t, all[3].NextBillingDate.IsZero())

	active, err := db.ListSubscriptions(ctx, model.ListFilter{Status: model.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	comms, err := db.ListSubscriptions(ctx, model.ListFilter{Status: model.StatusActive, Category: "Communication"})
	require.NoError(t, err)
	require.Len(t, comms, 1)
	assert.Equal(t, "Slack", comms[0].Name)

	none, err := db.ListSubscriptions(ctx, model.ListFilter{Category: "Marketing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLite_UpdateSubscription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &model.Subscription{Name: "Notion", Cost: 10, NextBillingDate: date(t, "2025-06-01")}
	require.NoError(t, db.CreateSubscription(ctx, sub))

	sub.Cost = 96
	sub.BillingCycle = model.CycleYearly
	sub.Status = model.StatusPaused
	sub.UpdatedAt = time.Time{}
	require.NoError(t, db.UpdateSubscription(ctx, sub))

	got, err := db.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 96.0, got.Cost)
	assert.Equal(t, model.CycleYearly, got.BillingCycle)
	assert.Equal(t, model.StatusPaused, got.Status)

	missing := &model.Subscription{ID: "missing", Name: "x", Status: model.StatusActive}
	assert.ErrorIs(t, db.UpdateSubscription(ctx, missing), storage.ErrNotFound)
}

func TestSQLite_DeleteSubscription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &model.Subscription{Name: "Dropbox", Cost: 12}
	require.NoError(t, db.CreateSubscription(ctx, sub))
	require.NoError(t, db.DeleteSubscription(ctx, sub.ID))

	_, err := db.GetSubscription(ctx, sub.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, db.DeleteSubscription(ctx, sub.ID), storage.ErrNotFound)
}

func TestSQLite_MarkUsed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &model.Subscription{Name: "Canva", Cost: 13}
	require.NoError(t, db.CreateSubscription(ctx, sub))

	require.NoError(t, db.MarkUsed(ctx, sub.ID, time.Date(2025, 6, 15, 18, 45, 0, 0, time.UTC)))

	got, err := db.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsed)
	assert.Equal(t, date(t, "2025-06-15"), *got.LastUsed)

	assert.ErrorIs(t, db.MarkUsed(ctx, "missing", time.Now()), storage.ErrNotFound)
}

func TestSQLite_ImportSubscriptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	n, err := db.ImportSubscriptions(ctx, []model.Subscription{
		{Name: "A", Cost: 1},
		{Name: "B", Cost: 2, BillingCycle: model.CycleWeekly},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := db.ListSubscriptions(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_ImportSubscriptions_RollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ImportSubscriptions(ctx, []model.Subscription{
		{Name: "Good", Cost: 1},
		{Name: "Negative", Cost: -1},
	})
	require.Error(t, err)

	all, err := db.ListSubscriptions(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLite_Settings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)

	want := model.Settings{
		EmailNotifications:  false,
		RenewalReminderDays: 3,
		UnusedThresholdDays: 60,
		RenewalWindowDays:   14,
	}
	require.NoError(t, db.SaveSettings(ctx, want))

	got, err = db.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, got.EmailNotifications)
	assert.Equal(t, 3, got.RenewalReminderDays)
	assert.Equal(t, 60, got.UnusedThresholdDays)
	assert.Equal(t, 14, got.RenewalWindowDays)

	want.UnusedThresholdDays = 0
	assert.Error(t, db.SaveSettings(ctx, want))
}

func TestSQLite_MigrationIdempotency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Open and close twice to verify migration idempotency
	db1, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	v1, err := db1.SchemaVersion()
	require.NoError(t, err)
	db1.Close()

	db2, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	defer db2.Close()
	v2, err := db2.SchemaVersion()
	require.NoError(t, err)

	assert.Equal(t, 2, v1)
	assert.Equal(t, v1, v2)
}

package tracker_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
	"github.com/ogulcanaydogan/subguard/pkg/transfer"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*tracker.Tracker, storage.Storage) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tr := tracker.New(store, nil, func() time.Time { return fixedNow }, logger)
	return tr, store
}

func day(offset int) time.Time {
	return model.Date(fixedNow).AddDate(0, 0, offset)
}

func addSub(t *testing.T, tr *tracker.Tracker, sub model.Subscription) model.Subscription {
	t.Helper()
	require.NoError(t, tr.Add(context.Background(), &sub))
	return sub
}

func TestTracker_Add(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	sub := &model.Subscription{
		Name:            "  Figma ",
		Cost:            15,
		Category:        "design tools",
		NextBillingDate: fixedNow.Add(26 * time.Hour),
	}
	require.NoError(t, tr.Add(ctx, sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "Figma", sub.Name)
	assert.Equal(t, "Design Tools", sub.Category)
	assert.Equal(t, model.CycleMonthly, sub.BillingCycle)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.Equal(t, day(1), sub.NextBillingDate)
	assert.Equal(t, fixedNow, sub.CreatedAt)

	got, err := store.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design Tools", got.Category)
}

func TestTracker_Add_UnknownCategoryFallsBack(t *testing.T) {
	tr, _ := newTestTracker(t)
	sub := addSub(t, tr, model.Subscription{Name: "Peloton", Cost: 44, Category: "Fitness"})
	assert.Equal(t, "Other", sub.Category)
}

func TestTracker_Add_RejectsInvalid(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	err := tr.Add(ctx, &model.Subscription{Name: "Bad", Cost: -3})
	assert.ErrorIs(t, err, economics.ErrInvalidInput)

	err = tr.Add(ctx, &model.Subscription{Name: " ", Cost: 3})
	assert.ErrorIs(t, err, economics.ErrInvalidInput)
}

func TestTracker_UpdateAndDelete(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	sub := addSub(t, tr, model.Subscription{Name: "Notion", Cost: 10, Category: "Productivity"})
	sub.Cost = 8
	sub.Status = model.StatusPaused
	sub.CreatedAt = time.Time{}
	require.NoError(t, tr.Update(ctx, &sub))
	assert.Equal(t, fixedNow, sub.CreatedAt)

	got, err := tr.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.Cost)
	assert.Equal(t, model.StatusPaused, got.Status)

	missing := model.Subscription{ID: "missing", Name: "x", Cost: 1}
	assert.ErrorIs(t, tr.Update(ctx, &missing), storage.ErrNotFound)

	require.NoError(t, tr.Delete(ctx, sub.ID))
	assert.ErrorIs(t, tr.Delete(ctx, sub.ID), storage.ErrNotFound)
}

func TestTracker_MarkUsed(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	sub := addSub(t, tr, model.Subscription{Name: "Canva", Cost: 13})
	got, err := tr.MarkUsed(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsed)
	assert.Equal(t, day(0), *got.LastUsed)

	_, err = tr.MarkUsed(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTracker_List_CanonicalizesCategoryFilter(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	addSub(t, tr, model.Subscription{Name: "Slack", Cost: 8, Category: "Communication"})
	addSub(t, tr, model.Subscription{Name: "GitHub", Cost: 4, Category: "Development"})

	subs, err := tr.List(ctx, model.ListFilter{Category: "communication"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Slack", subs[0].Name)
}

func TestTracker_ImportExport(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	input := "name,cost,billing_cycle,category,next_billing_date,last_used,notes\n" +
		"Adobe,54.99,monthly,design tools,2025-07-01,,\n" +
		",5,monthly,Other,,,\n" +
		"Dropbox,119.88,yearly,Cloud Storage,2025-12-01,2025-06-01,family\n"

	csvCodec, err := transfer.Get("csv")
	require.NoError(t, err)

	report, err := tr.Import(ctx, csvCodec, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Len(t, report.Skipped, 1)

	var buf bytes.Buffer
	n, err := tr.Export(ctx, csvCodec, &buf, model.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "Adobe,54.99,monthly,Design Tools,2025-07-01,,active,")
	assert.Contains(t, buf.String(), "Dropbox,119.88,yearly,Cloud Storage,2025-12-01,2025-06-01,active,family")

	_, err = tr.Import(ctx, csvCodec, strings.NewReader("title\nx\n"))
	assert.ErrorIs(t, err, economics.ErrInvalidInput)
}

func TestTracker_Settings(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	s, err := tr.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s)

	s.UnusedThresholdDays = 30
	saved, err := tr.UpdateSettings(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	cfg, err := tr.EngineConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.UnusedThresholdDays)
	assert.Equal(t, fixedNow, cfg.Now)

	s.RenewalWindowDays = 0
	_, err = tr.UpdateSettings(ctx, s)
	assert.ErrorIs(t, err, economics.ErrInvalidInput)
}

func TestTracker_Analytics(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	stale := day(-120)
	recent := day(-2)
	addSub(t, tr, model.Subscription{Name: "Figma", Cost: 15, Category: "Design Tools", NextBillingDate: day(3), LastUsed: &recent})
	addSub(t, tr, model.Subscription{Name: "Adobe", Cost: 600, BillingCycle: model.CycleYearly, Category: "Design Tools", NextBillingDate: day(20), LastUsed: &stale})
	addSub(t, tr, model.Subscription{Name: "Zoom", Cost: 15, Category: "Communication", NextBillingDate: day(60)})
	addSub(t, tr, model.Subscription{Name: "Old", Cost: 99, Status: model.StatusCancelled, NextBillingDate: day(1)})

	overview, err := tr.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, overview.TotalSubscriptions)
	assert.Equal(t, 3, overview.ActiveSubscriptions)
	assert.InDelta(t, 80.0, overview.TotalMonthly, 1e-9)

	cats, err := tr.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Design Tools", cats[0].Category)

	dead, err := tr.DeadWeight(ctx)
	require.NoError(t, err)
	require.Len(t, dead.Records, 2)
	assert.InDelta(t, 65.0, dead.MonthlySavings, 1e-9)

	recs, err := tr.Recommendations(ctx)
	require.NoError(t, err)
	require.Len(t, recs.Recommendations, 2)
	assert.Equal(t, "Adobe", recs.Recommendations[0].Name)

	upcoming, err := tr.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Figma", upcoming[0].Subscription.Name)

	due, err := tr.RenewalsWithin(ctx, 7)
	require.NoError(t, err)
	require.Len(t, due, 1)

	trends, err := tr.Trends(ctx, 3, economics.ByCreatedAt, true)
	require.NoError(t, err)
	require.Len(t, trends, 3)
	assert.Equal(t, "2025-06", trends[2].Month)
	assert.Equal(t, 4, trends[2].Count)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, overview, snap.Overview)
	assert.Len(t, snap.Upcoming, 2)
}

func TestTracker_SetDefaults(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	defaults := model.DefaultSettings()
	defaults.UnusedThresholdDays = 30
	require.NoError(t, tr.SetDefaults(defaults))

	cfg, err := tr.EngineConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.UnusedThresholdDays)

	saved := model.DefaultSettings()
	saved.UnusedThresholdDays = 45
	_, err = tr.UpdateSettings(ctx, saved)
	require.NoError(t, err)

	cfg, err = tr.EngineConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.UnusedThresholdDays)

	defaults.RenewalWindowDays = 0
	assert.ErrorIs(t, tr.SetDefaults(defaults), economics.ErrInvalidInput)
}

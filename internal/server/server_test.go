package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/subguard/internal/server"
	"github.com/ogulcanaydogan/subguard/pkg/alerts"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/metrics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/reminder"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	srv     *server.Server
	tracker *tracker.Tracker
	figma   model.Subscription
}

func setupServer(t *testing.T, opts ...server.Option) *fixture {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tr := tracker.New(store, nil, func() time.Time { return fixedNow }, logger)

	// Seed some data
	used := fixedNow.AddDate(0, 0, -1)
	figma := model.Subscription{Name: "Figma", Cost: 15, Category: "design tools", NextBillingDate: fixedNow.AddDate(0, 0, 3), LastUsed: &used}
	require.NoError(t, tr.Add(t.Context(), &figma))
	canva := model.Subscription{Name: "Canva", Cost: 120, BillingCycle: model.CycleYearly, Category: "Design Tools", NextBillingDate: fixedNow.AddDate(0, 0, 20)}
	require.NoError(t, tr.Add(t.Context(), &canva))

	return &fixture{srv: server.NewServer(tr, logger, opts...), tracker: tr, figma: figma}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_ListSubscriptions(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/api/v1/subscriptions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	subs := decode[[]model.Subscription](t, w)
	require.Len(t, subs, 2)
	assert.Equal(t, "Figma", subs[0].Name)

	w = f.do(t, "GET", "/api/v1/subscriptions?status=cancelled", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.Subscription](t, w))

	w = f.do(t, "GET", "/api/v1/subscriptions?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CreateSubscription(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "POST", "/api/v1/subscriptions",
		`{"name":"Notion","cost":10,"billing_cycle":"Monthly","category":"productivity","next_billing_date":"2025-07-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	sub := decode[model.Subscription](t, w)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "Productivity", sub.Category)
	assert.Equal(t, model.CycleMonthly, sub.BillingCycle)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.Equal(t, "2025-07-01", model.FormatDate(sub.NextBillingDate))
}

func TestServer_CreateSubscription_Invalid(t *testing.T) {
	f := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"empty name", `{"name":"","cost":5}`},
		{"negative cost", `{"name":"X","cost":-1}`},
		{"bad date", `{"name":"X","cost":1,"next_billing_date":"next week"}`},
		{"bad status", `{"name":"X","cost":1,"status":"gone"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "POST", "/api/v1/subscriptions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestServer_GetUpdateDelete(t *testing.T) {
	f := setupServer(t)
	path := "/api/v1/subscriptions/" + f.figma.ID

	w := f.do(t, "GET", path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Figma", decode[model.Subscription](t, w).Name)

	w = f.do(t, "PUT", path, `{"name":"Figma Pro","cost":45,"status":"paused","next_billing_date":"2025-06-18"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[model.Subscription](t, w)
	assert.Equal(t, "Figma Pro", updated.Name)
	assert.Equal(t, model.StatusPaused, updated.Status)

	w = f.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, "GET", path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, "PUT", path, `{"name":"X","cost":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MarkUsed(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "POST", "/api/v1/subscriptions/"+f.figma.ID+"/used", "")
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[model.Subscription](t, w)
	require.NotNil(t, sub.LastUsed)
	assert.Equal(t, "2025-06-15", model.FormatDate(*sub.LastUsed))

	w = f.do(t, "POST", "/api/v1/subscriptions/missing/used", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ImportExport(t *testing.T) {
	f := setupServer(t)

	csv := "Name,Cost,Billing Cycle,Category\nAdobe,54.99,monthly,Design Tools\n,10,monthly,\nSlack,8.75,monthly,Communication\n"
	w := f.do(t, "POST", "/api/v1/import?format=csv", csv)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[tracker.ImportReport](t, w)
	assert.Equal(t, 2, report.Imported)
	assert.Len(t, report.Skipped, 1)

	w = f.do(t, "GET", "/api/v1/export?format=csv&category=communication", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "subscriptions.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Slack,8.75,monthly,Communication"))

	w = f.do(t, "GET", "/api/v1/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Analytics(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/api/v1/analytics/overview", "")
	require.Equal(t, http.StatusOK, w.Code)
	o := decode[economics.Overview](t, w)
	assert.InDelta(t, 25.0, o.TotalMonthly, 1e-9)
	assert.Equal(t, 2, o.ActiveSubscriptions)

	w = f.do(t, "GET", "/api/v1/analytics/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[economics.CategoryBreakdown](t, w)
	require.Len(t, cats, 1)
	assert.Equal(t, "Design Tools", cats[0].Category)

	w = f.do(t, "GET", "/api/v1/analytics/dead-weight", "")
	require.Equal(t, http.StatusOK, w.Code)
	dead := decode[economics.DeadWeightReport](t, w)
	require.Len(t, dead.Records, 1)
	assert.Equal(t, "Canva", dead.Records[0].Subscription.Name)

	w = f.do(t, "GET", "/api/v1/analytics/recommendations", "")
	require.Equal(t, http.StatusOK, w.Code)
	recs := decode[economics.RecommendationSet](t, w)
	assert.InDelta(t, 10.0, recs.TotalPotentialSavings, 1e-9)

	w = f.do(t, "GET", "/api/v1/analytics/upcoming", "")
	require.Equal(t, http.StatusOK, w.Code)
	upcoming := decode[[]economics.Renewal](t, w)
	require.Len(t, upcoming, 2)
	assert.Equal(t, economics.UrgencyUrgent, upcoming[0].Urgency)

	w = f.do(t, "GET", "/api/v1/analytics/snapshot", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Trends(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/api/v1/analytics/trends?months=3&fill=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	points := decode[[]economics.MonthTotal](t, w)
	require.Len(t, points, 3)
	assert.Equal(t, "2025-06", points[2].Month)
	assert.Equal(t, 2, points[2].Count)

	w = f.do(t, "GET", "/api/v1/analytics/trends?field=next_billing_date", "")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, q := range []string{"months=0", "months=abc", "field=deleted_at"} {
		w = f.do(t, "GET", "/api/v1/analytics/trends?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestServer_Settings(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DefaultSettings().UnusedThresholdDays, decode[model.Settings](t, w).UnusedThresholdDays)

	w = f.do(t, "PUT", "/api/v1/settings", `{"unused_threshold_days":14}`)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decode[model.Settings](t, w)
	assert.Equal(t, 14, saved.UnusedThresholdDays)
	assert.Equal(t, 30, saved.RenewalWindowDays)

	w = f.do(t, "PUT", "/api/v1/settings", `{"renewal_window_days":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Catalog(t *testing.T) {
	f := setupServer(t)

	w := f.do(t, "GET", "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[[]map[string]string](t, w)
	require.NotEmpty(t, cats)
	assert.Equal(t, "Design Tools", cats[0]["name"])
}

type recorder struct{ sent []alerts.Alert }

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Send(_ context.Context, a alerts.Alert) error {
	r.sent = append(r.sent, a)
	return nil
}

func TestServer_RunReminder(t *testing.T) {
	f := setupServer(t)
	w := f.do(t, "POST", "/api/v1/reminders/run", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	rec := &recorder{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	f = setupServer(t)
	rem := reminder.New(f.tracker, []alerts.Notifier{rec}, logger)
	srv := server.NewServer(f.tracker, logger, server.WithReminder(rem))

	req := httptest.NewRequest("POST", "/api/v1/reminders/run", nil)
	rw := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	res := decode[reminder.Result](t, rw)
	assert.Equal(t, 1, res.RenewalsDue)
	assert.Equal(t, 2, res.AlertsSent)
	assert.Len(t, rec.sent, 2)
}

func TestServer_Metrics(t *testing.T) {
	f := setupServer(t, server.WithMetrics(metrics.NewCollector(nil)))

	w := f.do(t, "GET", "/api/v1/subscriptions", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "subguard_monthly_spend 25")
	assert.Contains(t, body, `subguard_http_requests_total{code="200",method="GET",route="GET /api/v1/subscriptions"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	f := setupServer(t)
	w := f.do(t, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

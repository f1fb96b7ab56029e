// Package metrics exposes subscription spend and service activity as Prometheus metrics.
//
// Spend gauges are refreshed from a tracker snapshot on every scrape:
//   - subguard_monthly_spend / subguard_yearly_spend: normalized totals of active subscriptions
//   - subguard_subscriptions: subscription count by state (total, active)
//   - subguard_category_monthly_spend: monthly spend by category
//   - subguard_dead_weight_subscriptions / subguard_dead_weight_monthly_savings
//   - subguard_upcoming_renewals: renewals in the window by urgency
//
// Counters and histograms track HTTP requests and reminder runs.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/subguard/pkg/reminder"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

// Namespace prefixes every metric name.
const Namespace = "subguard"

// SnapshotSource computes the dashboard views a scrape reports. *tracker.Tracker implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*tracker.Snapshot, error)
}

// Collector owns the subguard metrics and the registry they are registered with.
type Collector struct {
	registry *prometheus.Registry

	monthlySpend      prometheus.Gauge
	yearlySpend       prometheus.Gauge
	subscriptions     *prometheus.GaugeVec
	categorySpend     *prometheus.GaugeVec
	deadWeight        prometheus.Gauge
	deadWeightSavings prometheus.Gauge
	upcoming          *prometheus.GaugeVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reminderRuns    *prometheus.CounterVec
	alertsSent      prometheus.Counter
	refreshErrors   prometheus.Counter
}

// NewCollector creates the metrics and registers them. A nil registry gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		monthlySpend: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "monthly_spend",
			Help:      "Normalized monthly spend of active subscriptions",
		}),
		yearlySpend: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "yearly_spend",
			Help:      "Normalized yearly spend of active subscriptions",
		}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "subscriptions",
			Help:      "Number of tracked subscriptions by state",
		}, []string{"state"}),
		categorySpend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "category_monthly_spend",
			Help:      "Normalized monthly spend of active subscriptions by category",
		}, []string{"category"}),
		deadWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dead_weight_subscriptions",
			Help:      "Active subscriptions unused beyond the threshold",
		}),
		deadWeightSavings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dead_weight_monthly_savings",
			Help:      "Monthly spend recoverable by canceling dead-weight subscriptions",
		}),
		upcoming: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "upcoming_renewals",
			Help:      "Renewals inside the renewal window by urgency",
		}, []string{"urgency"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		reminderRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reminder_runs_total",
			Help:      "Reminder runs by result",
		}, []string{"result"}),
		alertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "alerts_sent_total",
			Help:      "Alerts delivered to every configured notifier",
		}),
		refreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "snapshot_errors_total",
			Help:      "Failed snapshot refreshes during scrapes",
		}),
	}

	registry.MustRegister(
		c.monthlySpend,
		c.yearlySpend,
		c.subscriptions,
		c.categorySpend,
		c.deadWeight,
		c.deadWeightSavings,
		c.upcoming,
		c.requestsTotal,
		c.requestDuration,
		c.reminderRuns,
		c.alertsSent,
		c.refreshErrors,
	)
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe sets the spend gauges from a snapshot. Categories and urgencies absent
// from the snapshot are cleared.
func (c *Collector) Observe(snap *tracker.Snapshot) {
	c.monthlySpend.Set(snap.Overview.TotalMonthly)
	c.yearlySpend.Set(snap.Overview.TotalYearly)
	c.subscriptions.WithLabelValues("total").Set(float64(snap.Overview.TotalSubscriptions))
	c.subscriptions.WithLabelValues("active").Set(float64(snap.Overview.ActiveSubscriptions))

	c.categorySpend.Reset()
	for _, ct := range snap.Categories {
		c.categorySpend.WithLabelValues(ct.Category).Set(ct.TotalMonthly)
	}

	c.deadWeight.Set(float64(len(snap.DeadWeight.Records)))
	c.deadWeightSavings.Set(snap.DeadWeight.MonthlySavings)

	c.upcoming.Reset()
	for _, r := range snap.Upcoming {
		c.upcoming.WithLabelValues(string(r.Urgency)).Inc()
	}
}

// Refresh recomputes the snapshot and updates the spend gauges.
func (c *Collector) Refresh(ctx context.Context, src SnapshotSource) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		c.refreshErrors.Inc()
		return err
	}
	c.Observe(snap)
	return nil
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, code int, d time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveReminder records the outcome of a reminder run.
func (c *Collector) ObserveReminder(res *reminder.Result, err error) {
	switch {
	case err != nil:
		c.reminderRuns.WithLabelValues("error").Inc()
	case res != nil && res.Disabled:
		c.reminderRuns.WithLabelValues("disabled").Inc()
	default:
		c.reminderRuns.WithLabelValues("ok").Inc()
	}
	if res != nil {
		c.alertsSent.Add(float64(res.AlertsSent))
	}
}

// Handler serves the registry in the Prometheus exposition format. When src is
// non-nil the spend gauges are refreshed before each scrape; a failed refresh
// still serves the last observed values.
func (c *Collector) Handler(src SnapshotSource) http.Handler {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
	if src == nil {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = c.Refresh(r.Context(), src)
		h.ServeHTTP(w, r)
	})
}

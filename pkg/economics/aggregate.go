package economics

import (
	"fmt"
	"sort"
	"time"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// MonthLayout is the key format of trend points.
const MonthLayout = "2006-01"

// CategoryTotal is the normalized monthly spend of one category.
type CategoryTotal struct {
	Category     string  `json:"category"`
	TotalMonthly float64 `json:"total_monthly"`
	Count        int     `json:"count"`
}

// CategoryBreakdown is ordered by TotalMonthly descending, then category ascending.
type CategoryBreakdown []CategoryTotal

// Total sums the monthly spend of all categories.
func (b CategoryBreakdown) Total() float64 {
	var sum float64
	for _, c := range b {
		sum += c.TotalMonthly
	}
	return sum
}

// AggregateByCategory groups active records by their exact category label.
func AggregateByCategory(records []model.Subscription) (CategoryBreakdown, error) {
	if err := validateAll(records); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	out := make(CategoryBreakdown, 0)
	for _, r := range records {
		if !r.IsActive() {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category})
		}
		out[i].TotalMonthly += NormalizeCost(r).Monthly
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalMonthly != out[j].TotalMonthly {
			return out[i].TotalMonthly > out[j].TotalMonthly
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// DateField selects the date a record is bucketed by in trends. The boolean is
// false when the record has no such date.
type DateField func(model.Subscription) (time.Time, bool)

// ByCreatedAt buckets records by the month they were added.
func ByCreatedAt(r model.Subscription) (time.Time, bool) {
	return r.CreatedAt, !r.CreatedAt.IsZero()
}

// ByNextBillingDate buckets records by the month they next renew.
func ByNextBillingDate(r model.Subscription) (time.Time, bool) {
	return r.NextBillingDate, !r.NextBillingDate.IsZero()
}

// ParseDateField maps a field name to its DateField. Empty means created_at.
func ParseDateField(name string) (DateField, error) {
	switch name {
	case "", "created_at":
		return ByCreatedAt, nil
	case "next_billing_date":
		return ByNextBillingDate, nil
	default:
		return nil, inputError("", "field", fmt.Sprintf("unknown trend field %q", name))
	}
}

// MonthTotal is the normalized monthly spend of the records falling in one month.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// AggregateTrends totals records per calendar month over the last `months` months,
// the month of cfg.Now included. Months without records are omitted.
func AggregateTrends(records []model.Subscription, months int, cfg Config, field DateField) ([]MonthTotal, error) {
	const op = "aggregate trends"
	if err := cfg.requireNow(op); err != nil {
		return nil, err
	}
	if months < 1 {
		return nil, preconditionError(op, "months must be >= 1, got %d", months)
	}
	if field == nil {
		return nil, preconditionError(op, "date field must be set")
	}
	if err := validateAll(records); err != nil {
		return nil, err
	}

	last := monthIndex(cfg.Now)
	first := last - months + 1
	totals := make(map[string]*MonthTotal)
	for _, r := range records {
		d, ok := field(r)
		if !ok {
			continue
		}
		idx := monthIndex(d)
		if idx < first || idx > last {
			continue
		}
		key := model.Date(d).Format(MonthLayout)
		mt, ok := totals[key]
		if !ok {
			mt = &MonthTotal{Month: key}
			totals[key] = mt
		}
		mt.Total += NormalizeCost(r).Monthly
		mt.Count++
	}

	out := make([]MonthTotal, 0, len(totals))
	for _, mt := range totals {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// FillMonths returns a continuous series covering the last `months` months up to
// now, taking values from points and zero elsewhere.
func FillMonths(points []MonthTotal, months int, now time.Time) []MonthTotal {
	if months < 1 {
		return []MonthTotal{}
	}
	byMonth := make(map[string]MonthTotal, len(points))
	for _, p := range points {
		byMonth[p.Month] = p
	}

	today := model.Date(now)
	start := time.Date(today.Year(), today.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthTotal, 0, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format(MonthLayout)
		p, ok := byMonth[key]
		if !ok {
			p = MonthTotal{Month: key}
		}
		out = append(out, p)
	}
	return out
}

// monthIndex counts months from year zero using the value's own calendar date,
// the same convention as model.Date.
func monthIndex(t time.Time) int {
	t = model.Date(t)
	return t.Year()*12 + int(t.Month()) - 1
}

// Overview is the headline spend summary.
type Overview struct {
	TotalMonthly        float64 `json:"total_monthly"`
	TotalYearly         float64 `json:"total_yearly"`
	TotalSubscriptions  int     `json:"total_subscriptions"`
	ActiveSubscriptions int     `json:"active_subscriptions"`
	TotalListedCost     float64 `json:"total_listed_cost"`
}

// Summarize totals normalized spend over active records. TotalListedCost sums the
// raw cost of every record regardless of cycle or status.
func Summarize(records []model.Subscription) (Overview, error) {
	if err := validateAll(records); err != nil {
		return Overview{}, err
	}

	var o Overview
	for _, r := range records {
		o.TotalSubscriptions++
		o.TotalListedCost += r.Cost
		if !r.IsActive() {
			continue
		}
		o.ActiveSubscriptions++
		o.TotalMonthly += NormalizeCost(r).Monthly
	}
	o.TotalYearly = o.TotalMonthly * MonthsPerYear
	return o, nil
}

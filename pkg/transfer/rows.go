package transfer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

type rawRow struct {
	line   int
	fields []string
}

// normalizeHeader maps "Billing Cycle" and "billing_cycle" to the same key.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// decodeRows maps a header row plus data rows onto subscriptions. The first
// non-empty row is the header; name and cost columns are required.
func decodeRows(rows []rawRow) (*Result, error) {
	res := &Result{
		Subscriptions: make([]model.Subscription, 0),
		Skipped:       make([]SkippedRow, 0),
	}

	headerAt := -1
	for i, r := range rows {
		if !blank(r.fields) {
			headerAt = i
			break
		}
	}
	if headerAt == -1 {
		return res, nil
	}

	index := make(map[string]int)
	for i, h := range rows[headerAt].fields {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	for _, required := range []string{"name", "cost"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("header is missing required column %q", required)
		}
	}

	for _, r := range rows[headerAt+1:] {
		if blank(r.fields) {
			continue
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(r.fields) {
				return ""
			}
			return strings.TrimSpace(r.fields[i])
		}

		sub, err := fromFields(get)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRow{Line: r.line, Reason: err.Error()})
			continue
		}
		res.Subscriptions = append(res.Subscriptions, sub)
	}
	return res, nil
}

func fromFields(get func(string) string) (model.Subscription, error) {
	name := get("name")
	if name == "" {
		return model.Subscription{}, fmt.Errorf("missing name")
	}
	costText := get("cost")
	if costText == "" {
		return model.Subscription{}, fmt.Errorf("missing cost")
	}
	cost, err := parseCost(costText)
	if err != nil {
		return model.Subscription{}, err
	}

	sub := model.Subscription{
		Name:     name,
		Cost:     cost,
		Category: get("category"),
		Notes:    get("notes"),
	}

	sub.BillingCycle = model.CycleMonthly
	if c := get("billing_cycle"); c != "" {
		sub.BillingCycle = model.ParseBillingCycle(c)
	}

	if s := get("next_billing_date"); s != "" {
		if sub.NextBillingDate, err = model.ParseDate(s); err != nil {
			return model.Subscription{}, fmt.Errorf("next_billing_date: %w", err)
		}
	}
	if sub.LastUsed, err = model.ParseOptionalDate(get("last_used")); err != nil {
		return model.Subscription{}, fmt.Errorf("last_used: %w", err)
	}
	if sub.Status, err = model.ParseStatus(get("status")); err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func parseCost(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cost %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative cost %s", d.String())
	}
	return d.InexactFloat64(), nil
}

// formatCost renders a cost with at least two fraction digits. Sub-cent
// digits are kept so an export can be imported back unchanged.
func formatCost(cost float64) string {
	d := decimal.NewFromFloat(cost)
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}

// toFields renders a subscription in Columns order.
func toFields(s model.Subscription) []string {
	return []string{
		s.Name,
		formatCost(s.Cost),
		string(s.BillingCycle),
		s.Category,
		model.FormatDate(s.NextBillingDate),
		model.FormatOptionalDate(s.LastUsed),
		string(s.Status),
		s.Notes,
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

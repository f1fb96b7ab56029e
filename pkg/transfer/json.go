package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// JSON is an array of flat records using the same fields as CSV.
type JSON struct{}

type jsonRecord struct {
	Name            string           `json:"name"`
	Cost            *decimal.Decimal `json:"cost"`
	BillingCycle    string           `json:"billing_cycle,omitempty"`
	Category        string           `json:"category,omitempty"`
	NextBillingDate string           `json:"next_billing_date,omitempty"`
	LastUsed        string           `json:"last_used,omitempty"`
	Status          string           `json:"status,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

func (JSON) Name() string        { return "json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Decode(r io.Reader) (*Result, error) {
	var records []jsonRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	res := &Result{
		Subscriptions: make([]model.Subscription, 0, len(records)),
		Skipped:       make([]SkippedRow, 0),
	}
	for i, rec := range records {
		cost := ""
		if rec.Cost != nil {
			cost = rec.Cost.String()
		}
		fields := map[string]string{
			"name":              rec.Name,
			"cost":              cost,
			"billing_cycle":     rec.BillingCycle,
			"category":          rec.Category,
			"next_billing_date": rec.NextBillingDate,
			"last_used":         rec.LastUsed,
			"status":            rec.Status,
			"notes":             rec.Notes,
		}
		sub, err := fromFields(func(col string) string { return fields[col] })
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRow{Line: i + 1, Reason: err.Error()})
			continue
		}
		res.Subscriptions = append(res.Subscriptions, sub)
	}
	return res, nil
}

func (JSON) Encode(w io.Writer, subs []model.Subscription) error {
	records := make([]jsonRecord, 0, len(subs))
	for _, s := range subs {
		cost := decimal.NewFromFloat(s.Cost)
		records = append(records, jsonRecord{
			Name:            s.Name,
			Cost:            &cost,
			BillingCycle:    string(s.BillingCycle),
			Category:        s.Category,
			NextBillingDate: model.FormatDate(s.NextBillingDate),
			LastUsed:        model.FormatOptionalDate(s.LastUsed),
			Status:          string(s.Status),
			Notes:           s.Notes,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

package economics

import "github.com/ogulcanaydogan/subguard/pkg/model"

// NormalizedCost is a subscription cost expressed on monthly and yearly bases.
type NormalizedCost struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// NormalizeCost converts a record's cost to monthly and yearly equivalents.
//
// Yearly is always Monthly * 12, so monthly and yearly sums never drift apart.
// An unrecognized billing cycle is treated as already monthly.
func NormalizeCost(r model.Subscription) NormalizedCost {
	monthly := MonthlyCost(r.Cost, r.BillingCycle)
	return NormalizedCost{
		Monthly: monthly,
		Yearly:  monthly * MonthsPerYear,
	}
}

// NormalizeChecked validates the record before normalizing it.
func NormalizeChecked(r model.Subscription) (NormalizedCost, error) {
	if err := ValidateRecord(r); err != nil {
		return NormalizedCost{}, err
	}
	return NormalizeCost(r), nil
}

// MonthlyCost converts a single charge to its monthly equivalent.
func MonthlyCost(cost float64, cycle model.BillingCycle) float64 {
	switch cycle.Kind() {
	case model.CycleWeekly:
		return cost * WeeksPerMonth
	case model.CycleMonthly:
		return cost
	case model.CycleQuarterly:
		return cost / MonthsPerQuarter
	case model.CycleYearly:
		return cost / MonthsPerYear
	}
	// model.CycleUnknown: Kind has already folded every other value onto it.
	return cost
}

// YearlyCost converts a single charge to its yearly equivalent.
func YearlyCost(cost float64, cycle model.BillingCycle) float64 {
	return MonthlyCost(cost, cycle) * MonthsPerYear
}

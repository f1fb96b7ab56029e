package economics

import (
	"fmt"
	"sort"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// Priority ranks how strongly a recommendation should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// RecommendationUnused is the only recommendation kind produced today.
const RecommendationUnused = "unused"

// Recommendation suggests canceling one subscription.
type Recommendation struct {
	SubscriptionID          string   `json:"subscription_id"`
	Name                    string   `json:"name"`
	Type                    string   `json:"type"`
	Priority                Priority `json:"priority"`
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	PotentialMonthlySavings float64  `json:"potential_monthly_savings"`
}

// RecommendationSet is the ordered recommendation list with its total.
type RecommendationSet struct {
	Recommendations       []Recommendation `json:"recommendations"`
	TotalPotentialSavings float64          `json:"total_potential_savings"`
}

// BuildRecommendations emits one recommendation per dead-weight record, largest
// saving first. The total is summed in dead-weight order before sorting.
func BuildRecommendations(records []model.Subscription, cfg Config) (RecommendationSet, error) {
	report, err := DetectDeadWeight(records, cfg)
	if err != nil {
		return RecommendationSet{}, err
	}

	set := RecommendationSet{Recommendations: make([]Recommendation, 0, len(report.Records))}
	for _, f := range report.Records {
		set.Recommendations = append(set.Recommendations, recommend(f, cfg.UnusedThresholdDays))
		set.TotalPotentialSavings += f.MonthlyCost
	}

	sort.SliceStable(set.Recommendations, func(i, j int) bool {
		a, b := set.Recommendations[i], set.Recommendations[j]
		if a.PotentialMonthlySavings != b.PotentialMonthlySavings {
			return a.PotentialMonthlySavings > b.PotentialMonthlySavings
		}
		return a.SubscriptionID < b.SubscriptionID
	})
	return set, nil
}

func recommend(f FlaggedSubscription, thresholdDays int) Recommendation {
	priority := PriorityMedium
	if f.DaysUnused == NeverUsed || f.DaysUnused > 2*thresholdDays {
		priority = PriorityHigh
	}

	desc := fmt.Sprintf("Never used. Canceling saves %.2f per month.", f.MonthlyCost)
	if f.DaysUnused != NeverUsed {
		desc = fmt.Sprintf("Unused for %d days. Canceling saves %.2f per month.", f.DaysUnused, f.MonthlyCost)
	}

	return Recommendation{
		SubscriptionID:          f.Subscription.ID,
		Name:                    f.Subscription.Name,
		Type:                    RecommendationUnused,
		Priority:                priority,
		Title:                   "Consider canceling " + f.Subscription.Name,
		Description:             desc,
		PotentialMonthlySavings: f.MonthlyCost,
	}
}

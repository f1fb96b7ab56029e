package economics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
)

func TestBuildRecommendations(t *testing.T) {
	now := mustTime(t, "2025-06-15T00:00:00Z")
	cfg := economics.DefaultConfig(now)

	records := []model.Subscription{
		usedAgo(sub("b", 20, model.CycleMonthly), now, 120),
		sub("c", 5, model.CycleMonthly),
		usedAgo(sub("a", 20, model.CycleMonthly), now, 181),
		usedAgo(sub("d", 100, model.CycleMonthly), now, 3),
		usedAgo(sub("e", 360, model.CycleYearly), now, 95),
	}

	set, err := economics.BuildRecommendations(records, cfg)
	require.NoError(t, err)
	require.Len(t, set.Recommendations, 4)

	ids := make([]string, 0, len(set.Recommendations))
	var sum float64
	for _, r := range set.Recommendations {
		ids = append(ids, r.SubscriptionID)
		sum += r.PotentialMonthlySavings
	}
	assert.Equal(t, []string{"e", "a", "b", "c"}, ids)
	assert.InDelta(t, sum, set.TotalPotentialSavings, 1e-9)
	assert.InDelta(t, 75.0, set.TotalPotentialSavings, 1e-9)

	byID := make(map[string]economics.Recommendation)
	for _, r := range set.Recommendations {
		byID[r.SubscriptionID] = r
	}
	assert.Equal(t, economics.PriorityHigh, byID["a"].Priority)
	assert.Equal(t, economics.PriorityMedium, byID["b"].Priority)
	assert.Equal(t, economics.PriorityHigh, byID["c"].Priority)
	assert.Equal(t, economics.PriorityMedium, byID["e"].Priority)

	assert.Equal(t, "Consider canceling sub-a", byID["a"].Title)
	assert.Equal(t, "sub-a", byID["a"].Name)
	assert.Equal(t, economics.RecommendationUnused, byID["a"].Type)
	assert.Contains(t, byID["c"].Description, "Never used")
	assert.Contains(t, byID["b"].Description, "Unused for 120 days")
}

func TestBuildRecommendations_PriorityIsMonotonic(t *testing.T) {
	now := mustTime(t, "2025-06-15T00:00:00Z")
	cfg := economics.DefaultConfig(now)

	rank := map[economics.Priority]int{economics.PriorityMedium: 1, economics.PriorityHigh: 2}
	prev := 0
	for d := 91; d <= 400; d += 7 {
		set, err := economics.BuildRecommendations([]model.Subscription{usedAgo(sub("x", 1, model.CycleMonthly), now, d)}, cfg)
		require.NoError(t, err)
		require.Len(t, set.Recommendations, 1)
		r := rank[set.Recommendations[0].Priority]
		assert.GreaterOrEqual(t, r, prev, "days unused %d", d)
		prev = r
	}
}

func TestBuildRecommendations_Empty(t *testing.T) {
	set, err := economics.BuildRecommendations(nil, economics.DefaultConfig(mustTime(t, "2025-06-15T00:00:00Z")))
	require.NoError(t, err)
	assert.Empty(t, set.Recommendations)
	assert.Zero(t, set.TotalPotentialSavings)
}

func TestBuildRecommendations_PropagatesErrors(t *testing.T) {
	_, err := economics.BuildRecommendations(nil, economics.Config{})
	assert.ErrorIs(t, err, economics.ErrPrecondition)
}

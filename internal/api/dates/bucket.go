package dates

import "github.com/duodate-app/duodate-api/internal/types"

// Compatibility score tier thresholds.
const (
	highScoreThreshold   = 70
	mediumScoreThreshold = 40
)

// BucketByCompatibility partitions room-mode suggestions into
// high/medium/low tiers on their compatibility score. A missing score
// counts as 0 and lands in low; the partition never fails. All keeps
// the original order.
func BucketByCompatibility(suggestions []types.DateSuggestion) types.BucketedSuggestions {
	buckets := types.BucketedSuggestions{
		High:   []types.DateSuggestion{},
		Medium: []types.DateSuggestion{},
		Low:    []types.DateSuggestion{},
		All:    suggestions,
	}
	if buckets.All == nil {
		buckets.All = []types.DateSuggestion{}
	}

	for _, s := range suggestions {
		score := 0
		if s.CompatibilityScore != nil {
			score = *s.CompatibilityScore
		}
		switch {
		case score >= highScoreThreshold:
			buckets.High = append(buckets.High, s)
		case score >= mediumScoreThreshold:
			buckets.Medium = append(buckets.Medium, s)
		default:
			buckets.Low = append(buckets.Low, s)
		}
	}

	return buckets
}

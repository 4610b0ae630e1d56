package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duodate-app/duodate-api/internal/types"
)

func scored(title string, score int) types.DateSuggestion {
	return types.DateSuggestion{Title: title, CompatibilityScore: &score}
}

func TestBucketByCompatibility(t *testing.T) {
	t.Run("PartitionsByThresholds", func(t *testing.T) {
		suggestions := []types.DateSuggestion{
			scored("high", 85),
			scored("medium", 50),
			scored("low", 10),
		}

		buckets := BucketByCompatibility(suggestions)

		assert.Len(t, buckets.High, 1)
		assert.Len(t, buckets.Medium, 1)
		assert.Len(t, buckets.Low, 1)
		assert.Equal(t, "high", buckets.High[0].Title)
		assert.Equal(t, "medium", buckets.Medium[0].Title)
		assert.Equal(t, "low", buckets.Low[0].Title)
	})

	t.Run("BoundaryScores", func(t *testing.T) {
		buckets := BucketByCompatibility([]types.DateSuggestion{
			scored("seventy", 70),
			scored("sixty-nine", 69),
			scored("forty", 40),
			scored("thirty-nine", 39),
		})

		assert.Len(t, buckets.High, 1)
		assert.Len(t, buckets.Medium, 2)
		assert.Len(t, buckets.Low, 1)
	})

	t.Run("TiersCoverEverySuggestion", func(t *testing.T) {
		suggestions := []types.DateSuggestion{
			scored("a", 95), scored("b", 72), scored("c", 55),
			scored("d", 41), scored("e", 12), {Title: "f"},
		}

		buckets := BucketByCompatibility(suggestions)

		assert.Equal(t, len(suggestions), len(buckets.High)+len(buckets.Medium)+len(buckets.Low))
		assert.Equal(t, suggestions, buckets.All)
	})

	t.Run("MissingScoreFallsIntoLow", func(t *testing.T) {
		buckets := BucketByCompatibility([]types.DateSuggestion{{Title: "unscored"}})
		assert.Len(t, buckets.Low, 1)
		assert.Empty(t, buckets.High)
		assert.Empty(t, buckets.Medium)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		buckets := BucketByCompatibility(nil)
		assert.NotNil(t, buckets.All)
		assert.Empty(t, buckets.All)
	})

	t.Run("AllPreservesOrder", func(t *testing.T) {
		suggestions := []types.DateSuggestion{scored("first", 10), scored("second", 90), scored("third", 50)}
		buckets := BucketByCompatibility(suggestions)
		assert.Equal(t, "first", buckets.All[0].Title)
		assert.Equal(t, "second", buckets.All[1].Title)
		assert.Equal(t, "third", buckets.All[2].Title)
	})
}

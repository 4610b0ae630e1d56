package dates

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duodate-app/duodate-api/internal/types"
)

func suggestion(category string) types.DateSuggestion {
	return types.DateSuggestion{
		ID:           "ai_suggestion_1",
		Title:        "X",
		Description:  "Y",
		Category:     category,
		Duration:     "2h",
		Cost:         "low",
		LocationType: "city",
	}
}

func TestNormalizeMood(t *testing.T) {
	cases := map[string]Mood{
		"romantic":         MoodRomantic,
		"Romantique":       MoodRomantic,
		"ambiance detendu": MoodRelaxed,
		"detendu":          MoodRelaxed,
		"relaxed":          MoodRelaxed,
		"AVENTUREUX":       MoodAdventurous,
		"  fun  ":          MoodFun,
		"melancholic":      MoodUnknown,
		"":                 MoodUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeMood(raw), "input %q", raw)
	}
}

func TestEnforceMood(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("MatchingCategoryIsAllowed", func(t *testing.T) {
		allowed, relaxed := EnforceMood(ctx, logger, []types.DateSuggestion{suggestion("fun")}, "fun")
		assert.Len(t, allowed, 1)
		assert.Empty(t, relaxed)
	})

	t.Run("MismatchedCategoryGoesToRelaxed", func(t *testing.T) {
		allowed, relaxed := EnforceMood(ctx, logger, []types.DateSuggestion{suggestion("fun")}, "romantic")
		assert.Empty(t, allowed)
		assert.Len(t, relaxed, 1)
	})

	t.Run("NothingIsEverDropped", func(t *testing.T) {
		suggestions := []types.DateSuggestion{
			suggestion("romantic"),
			suggestion("fun"),
			suggestion("outdoor"),
			suggestion("surprise"),
			suggestion("food"),
		}
		allowed, relaxed := EnforceMood(ctx, logger, suggestions, "romantic")
		assert.Equal(t, len(suggestions), len(allowed)+len(relaxed))
	})

	t.Run("AllowedCategoriesMatchTheMoodSet", func(t *testing.T) {
		suggestions := []types.DateSuggestion{
			suggestion("adventurous"),
			suggestion("outdoor"),
			suggestion("romantic"),
		}
		allowed, _ := EnforceMood(ctx, logger, suggestions, "aventureux")
		for _, s := range allowed {
			assert.True(t, allowedCategories[MoodAdventurous][s.Category], "category %s", s.Category)
		}
		assert.Len(t, allowed, 2)
	})

	t.Run("UnmappedMoodPassesEverythingThrough", func(t *testing.T) {
		suggestions := []types.DateSuggestion{suggestion("fun"), suggestion("romantic")}
		allowed, relaxed := EnforceMood(ctx, logger, suggestions, "whatever")
		assert.Equal(t, suggestions, allowed)
		assert.Empty(t, relaxed)
	})

	t.Run("AbsentMoodPassesEverythingThrough", func(t *testing.T) {
		suggestions := []types.DateSuggestion{suggestion("fun")}
		allowed, relaxed := EnforceMood(ctx, logger, suggestions, "")
		assert.Equal(t, suggestions, allowed)
		assert.Empty(t, relaxed)
	})

	t.Run("FrenchSynonymsShareTheAllowedSet", func(t *testing.T) {
		suggestions := []types.DateSuggestion{suggestion("relaxed"), suggestion("fun")}
		fromFrench, _ := EnforceMood(ctx, logger, suggestions, "ambiance detendu")
		fromEnglish, _ := EnforceMood(ctx, logger, suggestions, "relaxed")
		assert.Equal(t, fromEnglish, fromFrench)
	})
}

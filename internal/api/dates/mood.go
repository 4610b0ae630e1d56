package dates

import (
	"context"
	"log/slog"
	"strings"

	"github.com/duodate-app/duodate-api/app/observability/metrics"
	"github.com/duodate-app/duodate-api/internal/types"
)

// Mood is the normalized desired tone of a date.
type Mood string

const (
	MoodRomantic    Mood = "romantic"
	MoodFun         Mood = "fun"
	MoodRelaxed     Mood = "relaxed"
	MoodAdventurous Mood = "adventurous"
	MoodUnknown     Mood = ""
)

// moodSynonyms maps lowercased free-text mood answers (French and
// English) to the normalized mood.
var moodSynonyms = map[string]Mood{
	"romantic":            MoodRomantic,
	"romantique":          MoodRomantic,
	"ambiance romantique": MoodRomantic,

	"fun":     MoodFun,
	"ludique": MoodFun,
	"amusant": MoodFun,

	"relaxed":           MoodRelaxed,
	"detendu":           MoodRelaxed,
	"détendu":           MoodRelaxed,
	"ambiance detendu":  MoodRelaxed,
	"ambiance détendue": MoodRelaxed,
	"chill":             MoodRelaxed,

	"adventurous": MoodAdventurous,
	"aventureux":  MoodAdventurous,
	"aventure":    MoodAdventurous,
}

// allowedCategories fixes, per mood, the suggestion categories the
// model is allowed to return. Covers both the solo and the broader
// room category sets.
var allowedCategories = map[Mood]map[string]bool{
	MoodRomantic: {
		types.CategoryRomantic: true,
		types.CategoryFood:     true,
	},
	MoodFun: {
		types.CategoryFun:      true,
		types.CategoryActive:   true,
		types.CategorySurprise: true,
	},
	MoodRelaxed: {
		types.CategoryRelaxed: true,
		types.CategoryRelax:   true,
		types.CategoryCulture: true,
	},
	MoodAdventurous: {
		types.CategoryAdventurous: true,
		types.CategoryOutdoor:     true,
		types.CategoryActive:      true,
	},
}

// NormalizeMood resolves a free-text mood answer to a Mood via the
// synonym table. Unknown text resolves to MoodUnknown deterministically.
func NormalizeMood(raw string) Mood {
	if mood, ok := moodSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mood
	}
	return MoodUnknown
}

// EnforceMood partitions suggestions into those whose category the
// requested mood allows and "relaxed" alternatives. Nothing is ever
// dropped. An absent or unmapped mood passes everything through as
// allowed. The model is instructed to respect the mood but is not
// trusted to comply; this is the deterministic safety net, and the
// compliance rate is recorded for prompt-adherence monitoring.
func EnforceMood(ctx context.Context, logger *slog.Logger, suggestions []types.DateSuggestion, requestedMood string) (allowed, relaxed []types.DateSuggestion) {
	mood := NormalizeMood(requestedMood)
	categories, mapped := allowedCategories[mood]
	if !mapped {
		return suggestions, []types.DateSuggestion{}
	}

	allowed = make([]types.DateSuggestion, 0, len(suggestions))
	relaxed = make([]types.DateSuggestion, 0)
	for _, s := range suggestions {
		if categories[strings.ToLower(s.Category)] {
			allowed = append(allowed, s)
		} else {
			relaxed = append(relaxed, s)
		}
	}

	if len(suggestions) > 0 {
		ratio := float64(len(allowed)) / float64(len(suggestions))
		logger.InfoContext(ctx, "Mood compliance",
			slog.String("mood", string(mood)),
			slog.Int("matched", len(allowed)),
			slog.Int("total", len(suggestions)),
		)
		if m := metrics.Get(); m != nil {
			m.MoodComplianceRatio.Record(ctx, ratio)
		}
	}

	return allowed, relaxed
}

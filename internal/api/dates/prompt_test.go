package dates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duodate-app/duodate-api/internal/types"
)

func TestBuildPrompt(t *testing.T) {
	answers := types.QuizAnswers{
		"mood":          "romantic",
		"activity_type": "food",
		"budget":        "moderate",
		"duration":      "evening",
	}

	t.Run("Deterministic", func(t *testing.T) {
		first := buildPrompt(answers, nil)
		second := buildPrompt(answers, nil)
		assert.Equal(t, first, second)
	})

	t.Run("TranslatesAnswersToFrench", func(t *testing.T) {
		prompt := buildPrompt(answers, nil)
		assert.Contains(t, prompt, "une ambiance romantique et intime")
		assert.Contains(t, prompt, "autour de la gastronomie")
		assert.Contains(t, prompt, "un budget modéré (30€ à 80€)")
		assert.Contains(t, prompt, "une soirée")
	})

	t.Run("UnknownAnswersRenderAsUnspecified", func(t *testing.T) {
		prompt := buildPrompt(types.QuizAnswers{"mood": "grumpy"}, nil)
		assert.Contains(t, prompt, "non spécifié")
		assert.NotContains(t, prompt, "grumpy")
	})

	t.Run("RequestsExactlyFiveSuggestions", func(t *testing.T) {
		prompt := buildPrompt(answers, nil)
		assert.Contains(t, prompt, "EXACTEMENT 5 suggestions")
		assert.Contains(t, prompt, `"suggestions"`)
	})

	t.Run("LocationAddsClauseAndAreaField", func(t *testing.T) {
		location := &types.UserLocation{Latitude: 48.8566, Longitude: 2.3522, City: "Paris, France"}

		without := buildPrompt(answers, nil)
		with := buildPrompt(answers, location)

		assert.Contains(t, with, "Paris, France")
		assert.Contains(t, with, `"area"`)
		assert.NotContains(t, without, "Paris")
		assert.NotContains(t, without, `"area"`)
	})
}

func TestBuildRoomPrompt(t *testing.T) {
	couple := types.CoupleContext{
		User1: types.QuizAnswers{"mood": "romantic", "budget": "low"},
		User2: types.QuizAnswers{"mood": "adventurous", "budget": "low"},
	}
	couple.Common.RoomID = "room-1"

	t.Run("IncludesBothPartners", func(t *testing.T) {
		prompt := buildRoomPrompt(couple, nil, nil, nil)
		assert.Contains(t, prompt, "partenaire 1")
		assert.Contains(t, prompt, "partenaire 2")
		assert.Contains(t, prompt, "une ambiance romantique et intime")
		assert.Contains(t, prompt, "une ambiance aventureuse et pleine de surprises")
	})

	t.Run("RequiresCompatibilityScore", func(t *testing.T) {
		prompt := buildRoomPrompt(couple, nil, nil, nil)
		assert.Contains(t, prompt, `"compatibility_score"`)
		assert.Contains(t, prompt, "romantic|outdoor|food|culture|active|relax|surprise")
	})

	t.Run("GroundsOnPlacesAndEvents", func(t *testing.T) {
		places := []types.PlaceCandidate{{Name: "Jardin des Tuileries", Category: "gardens_and_parks"}}
		events := []types.EventCandidate{{Name: "Concert au Trianon", Venue: "Le Trianon"}}

		prompt := buildRoomPrompt(couple, nil, places, events)
		assert.Contains(t, prompt, "Jardin des Tuileries")
		assert.Contains(t, prompt, "Concert au Trianon à Le Trianon")

		bare := buildRoomPrompt(couple, nil, nil, nil)
		assert.False(t, strings.Contains(bare, "Lieux réels"))
	})
}

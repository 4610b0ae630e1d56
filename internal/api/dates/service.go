package dates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/duodate-app/duodate-api/app/observability/metrics"
	generativeAI "github.com/duodate-app/duodate-api/internal/api/generative_ai"
	"github.com/duodate-app/duodate-api/internal/types"
)

// ProgressFunc receives a user-facing milestone message and a percent
// in [0,100]. Within one generation call percentages are monotonically
// increasing.
type ProgressFunc func(message string, percent int)

// Fallback reasons, recorded per failure kind so operators can tell
// "upstream is down" from "upstream returns garbage" even though the
// caller-visible behavior is identical.
const (
	reasonNoCredential       = "no_credential"
	reasonTimeout            = "timeout"
	reasonUpstreamError      = "upstream_error"
	reasonMalformedJSON      = "malformed_json"
	reasonMissingSuggestions = "missing_suggestions"
	reasonTooFewSuggestions  = "too_few_suggestions"
)

// minSuggestions is the availability floor: callers always receive at
// least this many suggestions, from the model or from the fallback set.
const minSuggestions = 3

var _ Generator = (*GeneratorImpl)(nil)

// Generator produces date suggestions from quiz answers. Generate
// never returns an error: every upstream failure degrades to the
// static fallback set, so callers always receive at least 3
// suggestions.
type Generator interface {
	Generate(ctx context.Context, answers types.QuizAnswers, location *types.UserLocation, onProgress ProgressFunc) []types.DateSuggestion
	GenerateForRoom(ctx context.Context, couple types.CoupleContext, location *types.UserLocation, places []types.PlaceCandidate, events []types.EventCandidate) []types.DateSuggestion
}

type GeneratorImpl struct {
	logger    *slog.Logger
	aiClient  generativeAI.Client // nil when no credential is configured
	aiTimeout time.Duration
}

func NewGeneratorImpl(aiClient generativeAI.Client, aiTimeout time.Duration, logger *slog.Logger) *GeneratorImpl {
	if aiTimeout <= 0 {
		aiTimeout = 15 * time.Second
	}
	return &GeneratorImpl{
		logger:    logger,
		aiClient:  aiClient,
		aiTimeout: aiTimeout,
	}
}

// rawSuggestion is the per-item shape the model is instructed to emit.
type rawSuggestion struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Duration           string `json:"duration"`
	Cost               string `json:"cost"`
	LocationType       string `json:"location_type"`
	Area               string `json:"area"`
	MatchScore         *int   `json:"match_score"`
	CompatibilityScore *int   `json:"compatibility_score"`
}

func (g *GeneratorImpl) Generate(ctx context.Context, answers types.QuizAnswers, location *types.UserLocation, onProgress ProgressFunc) []types.DateSuggestion {
	ctx, span := otel.Tracer("DateGenerator").Start(ctx, "Generate")
	defer span.End()

	progress(onProgress, "Analyse de vos préférences...", 30)
	prompt := buildPrompt(answers, location)

	suggestions := g.callAndParse(ctx, systemInstruction, prompt, onProgress)
	if suggestions == nil {
		progress(onProgress, "Finalisation de vos idées de rendez-vous...", 90)
		return fallbackSuggestions(answers, location)
	}

	progress(onProgress, "Finalisation de vos idées de rendez-vous...", 90)
	shaped := g.shapeSuggestions(suggestions, answers, location)
	span.SetAttributes(attribute.Int("suggestions.count", len(shaped)))
	span.SetStatus(codes.Ok, "suggestions generated")
	return shaped
}

func (g *GeneratorImpl) GenerateForRoom(ctx context.Context, couple types.CoupleContext, location *types.UserLocation, places []types.PlaceCandidate, events []types.EventCandidate) []types.DateSuggestion {
	ctx, span := otel.Tracer("DateGenerator").Start(ctx, "GenerateForRoom")
	defer span.End()

	prompt := buildRoomPrompt(couple, location, places, events)

	suggestions := g.callAndParse(ctx, roomSystemInstruction, prompt, nil)
	if suggestions == nil {
		return fallbackSuggestions(couple.User1, location)
	}

	shaped := g.shapeSuggestions(suggestions, couple.User1, location)
	span.SetAttributes(attribute.Int("suggestions.count", len(shaped)))
	span.SetStatus(codes.Ok, "room suggestions generated")
	return shaped
}

// callAndParse runs the single model invocation and validates its JSON
// payload. It returns nil on any failure after recording the reason;
// the caller then takes the fallback path.
func (g *GeneratorImpl) callAndParse(ctx context.Context, system, prompt string, onProgress ProgressFunc) []rawSuggestion {
	if g.aiClient == nil {
		g.recordFallback(ctx, reasonNoCredential, nil)
		return nil
	}

	progress(onProgress, "Interrogation du modèle...", 60)

	if m := metrics.Get(); m != nil {
		m.ProviderRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("provider", "model")))
	}

	// A hung upstream call must not stall the pipeline; timeout is
	// treated exactly like any other upstream failure.
	callCtx, cancel := context.WithTimeout(ctx, g.aiTimeout)
	defer cancel()

	content, err := g.aiClient.Complete(callCtx, system, prompt)
	if err != nil {
		reason := reasonUpstreamError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		g.recordFallback(ctx, reason, err)
		return nil
	}

	progress(onProgress, "Traitement des suggestions...", 80)

	var payload struct {
		Suggestions []rawSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(content)), &payload); err != nil {
		g.recordFallback(ctx, reasonMalformedJSON, err)
		return nil
	}
	// A parsed object without a suggestions array, or with fewer
	// entries than the floor, is a contract violation like any other
	// and falls back too.
	if len(payload.Suggestions) == 0 {
		g.recordFallback(ctx, reasonMissingSuggestions, nil)
		return nil
	}
	if len(payload.Suggestions) < minSuggestions {
		g.recordFallback(ctx, reasonTooFewSuggestions, nil)
		return nil
	}

	return payload.Suggestions
}

// shapeSuggestions assigns synthetic ids, illustration references, and
// traceability annotations to the raw model output.
func (g *GeneratorImpl) shapeSuggestions(raw []rawSuggestion, answers types.QuizAnswers, location *types.UserLocation) []types.DateSuggestion {
	now := time.Now()
	out := make([]types.DateSuggestion, 0, len(raw))
	for i, r := range raw {
		out = append(out, types.DateSuggestion{
			ID:                 fmt.Sprintf("ai_suggestion_%d", i+1),
			Title:              r.Title,
			Description:        r.Description,
			Category:           strings.ToLower(r.Category),
			Duration:           r.Duration,
			Cost:               r.Cost,
			LocationType:       r.LocationType,
			Area:               r.Area,
			ImageURL:           illustrationURL(r.Category, r.Title, i),
			GeneratedBy:        types.GeneratedByAI,
			MatchScore:         clampScore(r.MatchScore),
			CompatibilityScore: clampScore(r.CompatibilityScore),
			CreatedAt:          now,
			QuizAnswersUsed:    answers.Clone(),
			UserLocation:       location,
		})
	}
	return out
}

// fallbackSuggestions is the system's sole availability guarantee: a
// fixed, dependency-free list of 3 generic ideas, independent of the
// answers except for the traceability annotation.
func fallbackSuggestions(answers types.QuizAnswers, location *types.UserLocation) []types.DateSuggestion {
	now := time.Now()
	base := []types.DateSuggestion{
		{
			Title:        "Dîner romantique aux chandelles",
			Description:  "Réservez une table dans un restaurant cosy et profitez d'un dîner en tête-à-tête.",
			Category:     types.CategoryRomantic,
			Duration:     "2h",
			Cost:         "moderate",
			LocationType: "indoor",
		},
		{
			Title:        "Balade détente au parc",
			Description:  "Une promenade tranquille au parc le plus proche, sans programme ni contrainte.",
			Category:     types.CategoryRelaxed,
			Duration:     "1h30",
			Cost:         "low",
			LocationType: "outdoor",
		},
		{
			Title:        "Soirée cinéma",
			Description:  "Choisissez un film qui vous fait envie à tous les deux et partagez un grand pop-corn.",
			Category:     types.CategoryFun,
			Duration:     "3h",
			Cost:         "moderate",
			LocationType: "indoor",
		},
	}

	for i := range base {
		base[i].ID = fmt.Sprintf("ai_suggestion_%d", i+1)
		base[i].ImageURL = illustrationURL(base[i].Category, base[i].Title, i)
		base[i].GeneratedBy = types.GeneratedByAI
		base[i].CreatedAt = now
		base[i].QuizAnswersUsed = answers.Clone()
		base[i].UserLocation = location
	}
	return base
}

func (g *GeneratorImpl) recordFallback(ctx context.Context, reason string, err error) {
	g.logger.WarnContext(ctx, "Falling back to static suggestions",
		slog.String("reason", reason),
		slog.Any("error", err),
	)
	if m := metrics.Get(); m != nil {
		m.GenerationFallbackTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func progress(onProgress ProgressFunc, message string, percent int) {
	if onProgress != nil {
		onProgress(message, percent)
	}
}

// cleanJSONResponse strips markdown code fences models like to wrap
// around JSON payloads.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	return strings.TrimSpace(response)
}

func clampScore(score *int) *int {
	if score == nil {
		return nil
	}
	v := *score
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}

// illustrationURL derives a stable image reference from category,
// title, and position.
func illustrationURL(category, title string, index int) string {
	keyword := category
	if keyword == "" {
		keyword = "date"
	}
	firstWord := title
	if idx := strings.IndexByte(firstWord, ' '); idx > 0 {
		firstWord = firstWord[:idx]
	}
	return fmt.Sprintf("https://source.unsplash.com/800x600/?%s,%s&sig=%d",
		url.QueryEscape(strings.ToLower(keyword)), url.QueryEscape(strings.ToLower(firstWord)), index+1)
}

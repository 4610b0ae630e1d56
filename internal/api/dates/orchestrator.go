package dates

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/duodate-app/duodate-api/app/observability/metrics"
	"github.com/duodate-app/duodate-api/internal/api/geo"
	"github.com/duodate-app/duodate-api/internal/api/places"
	"github.com/duodate-app/duodate-api/internal/types"
)

// ErrMissingPartnerAnswers is returned by room generation when either
// partner's quiz answers are absent. There is no sensible default for
// a missing partner's preferences, so this is the one hard validation
// error in the pipeline.
var ErrMissingPartnerAnswers = errors.New("both partners' quiz answers are required")

const communityIdeasLimit = 3

var _ Service = (*ServiceImpl)(nil)

// Service is the top-level coordinator for date idea generation.
type Service interface {
	GetPersonalizedIdeas(ctx context.Context, answers types.QuizAnswers, cityName string, onProgress ProgressFunc) []types.DateSuggestion
	GenerateForRoom(ctx context.Context, req types.GenerateRoomRequest) (types.BucketedSuggestions, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	geoService   geo.Service
	placeService places.Service // nil tolerated: room prompts lose their place/event grounding
	generator    Generator
	repository   Repository // nil tolerated: no community ideas are merged
	radiusMeters int
	poiLimit     int
}

func NewServiceImpl(geoService geo.Service, placeService places.Service, generator Generator, repository Repository, radiusMeters, poiLimit int, logger *slog.Logger) *ServiceImpl {
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}
	if poiLimit <= 0 {
		poiLimit = 10
	}
	return &ServiceImpl{
		logger:       logger,
		geoService:   geoService,
		placeService: placeService,
		generator:    generator,
		repository:   repository,
		radiusMeters: radiusMeters,
		poiLimit:     poiLimit,
	}
}

// GetPersonalizedIdeas resolves the optional city, generates AI
// suggestions, merges up to 3 community ideas, and reports progress at
// fixed milestones. It never fails: geocoding and community lookups
// degrade silently and the generator has its own fallback floor.
func (s *ServiceImpl) GetPersonalizedIdeas(ctx context.Context, answers types.QuizAnswers, cityName string, onProgress ProgressFunc) (result []types.DateSuggestion) {
	ctx, span := otel.Tracer("DateOrchestrator").Start(ctx, "GetPersonalizedIdeas")
	defer span.End()

	start := time.Now()
	if m := metrics.Get(); m != nil {
		m.GenerationRequestsTotal.Add(ctx, 1)
		defer func() {
			m.GenerationDurationSecs.Record(ctx, time.Since(start).Seconds())
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Generation pipeline panicked, serving fallback", slog.Any("panic", r))
			span.SetStatus(codes.Error, "pipeline panic")
			result = fallbackSuggestions(answers, nil)
		}
	}()

	progress(onProgress, "Recherche de votre ville...", 5)
	var location *types.UserLocation
	if cityName != "" {
		location = s.geoService.ResolveCity(ctx, cityName)
	}

	aiSuggestions := s.generator.Generate(ctx, answers, location, onProgress)

	community := s.fetchCommunityIdeas(ctx, answers)

	result = append(aiSuggestions, community...)
	progress(onProgress, "Vos idées de rendez-vous sont prêtes !", 100)

	span.SetAttributes(
		attribute.Int("suggestions.ai", len(aiSuggestions)),
		attribute.Int("suggestions.community", len(community)),
	)
	span.SetStatus(codes.Ok, "ideas generated")
	return result
}

// fetchCommunityIdeas is best effort: any repository error, or no
// repository at all, yields an empty list.
func (s *ServiceImpl) fetchCommunityIdeas(ctx context.Context, answers types.QuizAnswers) []types.DateSuggestion {
	if s.repository == nil {
		return nil
	}
	if m := metrics.Get(); m != nil {
		m.CommunityIdeasFetchTotal.Add(ctx, 1)
	}
	ideas, err := s.repository.FindCommunityIdeas(ctx, answers, communityIdeasLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "Community idea lookup failed, continuing without", slog.Any("error", err))
		return nil
	}
	return ideas
}

// GenerateForRoom runs couple-mode generation: both partners' answers
// are required, the shared city is resolved, nearby places and events
// are fetched concurrently to ground the prompt, and the result is
// partitioned by compatibility score.
func (s *ServiceImpl) GenerateForRoom(ctx context.Context, req types.GenerateRoomRequest) (types.BucketedSuggestions, error) {
	ctx, span := otel.Tracer("DateOrchestrator").Start(ctx, "GenerateForRoom")
	defer span.End()

	if len(req.User1Answers) == 0 || len(req.User2Answers) == 0 || req.RoomID == "" {
		span.SetStatus(codes.Error, "missing partner answers")
		return types.BucketedSuggestions{}, ErrMissingPartnerAnswers
	}
	span.SetAttributes(attribute.String("room.id", req.RoomID))

	couple := types.CoupleContext{User1: req.User1Answers, User2: req.User2Answers}
	couple.Common.RoomID = req.RoomID
	couple.Common.City = req.User1Answers.City()
	if couple.Common.City == "" {
		couple.Common.City = req.User2Answers.City()
	}

	var location *types.UserLocation
	if couple.Common.City != "" {
		location = s.geoService.ResolveCity(ctx, couple.Common.City)
	}

	var (
		nearbyPlaces []types.PlaceCandidate
		nearbyEvents []types.EventCandidate
	)
	if location != nil && s.placeService != nil {
		// Both lookups are independent and individually best effort.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			nearbyPlaces = s.placeService.FindNearby(gctx, location.Latitude, location.Longitude, s.radiusMeters, s.poiLimit)
			return nil
		})
		g.Go(func() error {
			nearbyEvents = s.placeService.EventsNear(gctx, location.Latitude, location.Longitude, s.radiusMeters, communityIdeasLimit)
			return nil
		})
		_ = g.Wait()
	}

	suggestions := s.generator.GenerateForRoom(ctx, couple, location, nearbyPlaces, nearbyEvents)
	buckets := BucketByCompatibility(suggestions)

	span.SetAttributes(
		attribute.Int("suggestions.high", len(buckets.High)),
		attribute.Int("suggestions.medium", len(buckets.Medium)),
		attribute.Int("suggestions.low", len(buckets.Low)),
	)
	span.SetStatus(codes.Ok, "room ideas generated")
	return buckets, nil
}

package dates

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/duodate-app/duodate-api/internal/types"
)

// MockGeoService is a mock implementation of the geo.Service interface.
type MockGeoService struct {
	mock.Mock
}

func (m *MockGeoService) ResolveCity(ctx context.Context, name string) *types.UserLocation {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.UserLocation)
}

// MockPlaceService is a mock implementation of the places.Service interface.
type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) FindNearby(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.PlaceCandidate {
	args := m.Called(ctx, lat, lon, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.PlaceCandidate)
}

func (m *MockPlaceService) Details(ctx context.Context, sourceID string) (*types.PlaceCandidate, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlaceCandidate), args.Error(1)
}

func (m *MockPlaceService) EventsNear(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.EventCandidate {
	args := m.Called(ctx, lat, lon, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.EventCandidate)
}

// MockGenerator is a mock implementation of the Generator interface.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, answers types.QuizAnswers, location *types.UserLocation, onProgress ProgressFunc) []types.DateSuggestion {
	args := m.Called(ctx, answers, location, onProgress)
	return args.Get(0).([]types.DateSuggestion)
}

func (m *MockGenerator) GenerateForRoom(ctx context.Context, couple types.CoupleContext, location *types.UserLocation, places []types.PlaceCandidate, events []types.EventCandidate) []types.DateSuggestion {
	args := m.Called(ctx, couple, location, places, events)
	return args.Get(0).([]types.DateSuggestion)
}

// MockRepository is a mock implementation of the Repository interface.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindCommunityIdeas(ctx context.Context, answers types.QuizAnswers, limit int) ([]types.DateSuggestion, error) {
	args := m.Called(ctx, answers, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DateSuggestion), args.Error(1)
}

func aiSuggestions() []types.DateSuggestion {
	return []types.DateSuggestion{
		{ID: "ai_suggestion_1", Title: "Dîner", GeneratedBy: types.GeneratedByAI},
		{ID: "ai_suggestion_2", Title: "Balade", GeneratedBy: types.GeneratedByAI},
		{ID: "ai_suggestion_3", Title: "Cinéma", GeneratedBy: types.GeneratedByAI},
	}
}

func TestGetPersonalizedIdeas(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	answers := types.QuizAnswers{"mood": "romantic", "location": "Paris"}
	location := &types.UserLocation{Latitude: 48.8566, Longitude: 2.3522, City: "Paris"}

	t.Run("MergesAIFirstThenCommunity", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)
		repoMock := new(MockRepository)

		geoMock.On("ResolveCity", mock.Anything, "Paris").Return(location).Once()
		genMock.On("Generate", mock.Anything, answers, location, mock.Anything).Return(aiSuggestions()).Once()
		community := []types.DateSuggestion{{ID: "c1", Title: "Atelier cuisine", GeneratedBy: types.GeneratedByCommunity}}
		repoMock.On("FindCommunityIdeas", mock.Anything, answers, 3).Return(community, nil).Once()

		service := NewServiceImpl(geoMock, nil, genMock, repoMock, 0, 0, logger)
		out := service.GetPersonalizedIdeas(ctx, answers, "Paris", nil)

		assert.Len(t, out, 4)
		assert.Equal(t, types.GeneratedByAI, out[0].GeneratedBy)
		assert.Equal(t, types.GeneratedByCommunity, out[3].GeneratedBy)
		geoMock.AssertExpectations(t)
		genMock.AssertExpectations(t)
		repoMock.AssertExpectations(t)
	})

	t.Run("GeocodeFailureContinuesWithoutLocation", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)

		geoMock.On("ResolveCity", mock.Anything, "Nowhereville").Return(nil).Once()
		genMock.On("Generate", mock.Anything, answers, (*types.UserLocation)(nil), mock.Anything).Return(aiSuggestions()).Once()

		service := NewServiceImpl(geoMock, nil, genMock, nil, 0, 0, logger)
		out := service.GetPersonalizedIdeas(ctx, answers, "Nowhereville", nil)

		assert.Len(t, out, 3)
		genMock.AssertExpectations(t)
	})

	t.Run("NoCitySkipsGeocoding", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)

		genMock.On("Generate", mock.Anything, answers, (*types.UserLocation)(nil), mock.Anything).Return(aiSuggestions()).Once()

		service := NewServiceImpl(geoMock, nil, genMock, nil, 0, 0, logger)
		service.GetPersonalizedIdeas(ctx, answers, "", nil)

		geoMock.AssertNotCalled(t, "ResolveCity", mock.Anything, mock.Anything)
	})

	t.Run("CommunityLookupFailureIsBestEffort", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)
		repoMock := new(MockRepository)

		geoMock.On("ResolveCity", mock.Anything, "Paris").Return(location).Once()
		genMock.On("Generate", mock.Anything, answers, location, mock.Anything).Return(aiSuggestions()).Once()
		repoMock.On("FindCommunityIdeas", mock.Anything, answers, 3).Return(nil, errors.New("db down")).Once()

		service := NewServiceImpl(geoMock, nil, genMock, repoMock, 0, 0, logger)
		out := service.GetPersonalizedIdeas(ctx, answers, "Paris", nil)

		assert.Len(t, out, 3)
	})

	t.Run("ProgressHitsStartAndEnd", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)

		geoMock.On("ResolveCity", mock.Anything, "Paris").Return(location).Once()
		genMock.On("Generate", mock.Anything, answers, location, mock.Anything).Return(aiSuggestions()).Once()

		var percents []int
		service := NewServiceImpl(geoMock, nil, genMock, nil, 0, 0, logger)
		service.GetPersonalizedIdeas(ctx, answers, "Paris", func(message string, percent int) {
			percents = append(percents, percent)
		})

		assert.Equal(t, 5, percents[0])
		assert.Equal(t, 100, percents[len(percents)-1])
	})
}

func TestGenerateForRoomOrchestration(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	user1 := types.QuizAnswers{"mood": "romantic", "location": "Lyon"}
	user2 := types.QuizAnswers{"mood": "fun"}
	location := &types.UserLocation{Latitude: 45.764, Longitude: 4.8357, City: "Lyon"}

	t.Run("MissingPartnerAnswersIsRejectedBeforeGeneration", func(t *testing.T) {
		geoMock := new(MockGeoService)
		genMock := new(MockGenerator)

		service := NewServiceImpl(geoMock, nil, genMock, nil, 0, 0, logger)
		_, err := service.GenerateForRoom(ctx, types.GenerateRoomRequest{
			User1Answers: user1,
			RoomID:       "room-1",
		})

		assert.ErrorIs(t, err, ErrMissingPartnerAnswers)
		genMock.AssertNotCalled(t, "GenerateForRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingRoomIDIsRejected", func(t *testing.T) {
		service := NewServiceImpl(new(MockGeoService), nil, new(MockGenerator), nil, 0, 0, logger)
		_, err := service.GenerateForRoom(ctx, types.GenerateRoomRequest{
			User1Answers: user1,
			User2Answers: user2,
		})
		assert.ErrorIs(t, err, ErrMissingPartnerAnswers)
	})

	t.Run("FansOutPlacesAndEventsAndBuckets", func(t *testing.T) {
		geoMock := new(MockGeoService)
		placeMock := new(MockPlaceService)
		genMock := new(MockGenerator)

		nearbyPlaces := []types.PlaceCandidate{{Name: "Parc de la Tête d'Or"}}
		nearbyEvents := []types.EventCandidate{{Name: "Festival Lumière"}}

		geoMock.On("ResolveCity", mock.Anything, "Lyon").Return(location).Once()
		placeMock.On("FindNearby", mock.Anything, location.Latitude, location.Longitude, 5000, 10).Return(nearbyPlaces).Once()
		placeMock.On("EventsNear", mock.Anything, location.Latitude, location.Longitude, 5000, 3).Return(nearbyEvents).Once()

		high, med, low := 85, 50, 10
		genMock.On("GenerateForRoom", mock.Anything, mock.Anything, location, nearbyPlaces, nearbyEvents).Return([]types.DateSuggestion{
			{Title: "A", CompatibilityScore: &high},
			{Title: "B", CompatibilityScore: &med},
			{Title: "C", CompatibilityScore: &low},
		}).Once()

		service := NewServiceImpl(geoMock, placeMock, genMock, nil, 0, 0, logger)
		buckets, err := service.GenerateForRoom(ctx, types.GenerateRoomRequest{
			User1Answers: user1,
			User2Answers: user2,
			RoomID:       "room-1",
		})

		assert.NoError(t, err)
		assert.Len(t, buckets.High, 1)
		assert.Len(t, buckets.Medium, 1)
		assert.Len(t, buckets.Low, 1)
		assert.Len(t, buckets.All, 3)
		placeMock.AssertExpectations(t)
	})

	t.Run("NoLocationSkipsPlaceLookups", func(t *testing.T) {
		geoMock := new(MockGeoService)
		placeMock := new(MockPlaceService)
		genMock := new(MockGenerator)

		noCity1 := types.QuizAnswers{"mood": "romantic"}
		genMock.On("GenerateForRoom", mock.Anything, mock.Anything, (*types.UserLocation)(nil), []types.PlaceCandidate(nil), []types.EventCandidate(nil)).Return(aiSuggestions()).Once()

		service := NewServiceImpl(geoMock, placeMock, genMock, nil, 0, 0, logger)
		_, err := service.GenerateForRoom(ctx, types.GenerateRoomRequest{
			User1Answers: noCity1,
			User2Answers: user2,
			RoomID:       "room-2",
		})

		assert.NoError(t, err)
		placeMock.AssertNotCalled(t, "FindNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

package dates

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/duodate-app/duodate-api/internal/api"
	"github.com/duodate-app/duodate-api/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GenerateDates handles POST /api/dates/generate.
func (h *Handler) GenerateDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DateHandler").Start(r.Context(), "GenerateDates")
	defer span.End()

	l := h.logger.With(slog.String("method", "GenerateDates"))

	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	answers := req.QuizAnswers
	if answers == nil {
		answers = types.QuizAnswers{}
	}

	l.InfoContext(ctx, "Generating date suggestions", slog.String("city", answers.City()), slog.String("mood", answers.Mood()))

	suggestions := h.service.GetPersonalizedIdeas(ctx, answers, answers.City(), nil)

	// Mood enforcement lives here, server-side, as the single source
	// of truth; disallowed categories are returned as relaxed
	// alternatives rather than dropped.
	allowed, relaxed := EnforceMood(ctx, h.logger, suggestions, answers.Mood())

	span.SetStatus(codes.Ok, "dates generated")
	api.WriteJSONResponse(w, r, http.StatusOK, types.GenerateResponse{
		Success:            true,
		Dates:              allowed,
		RelaxedSuggestions: relaxed,
	})
}

// GenerateRoomDates handles POST /api/dates/generate-room.
func (h *Handler) GenerateRoomDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DateHandler").Start(r.Context(), "GenerateRoomDates")
	defer span.End()

	l := h.logger.With(slog.String("method", "GenerateRoomDates"))

	var req types.GenerateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	buckets, err := h.service.GenerateForRoom(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMissingPartnerAnswers) {
			l.WarnContext(ctx, "Room generation rejected", slog.Any("error", err))
			span.SetStatus(codes.Error, "validation failed")
			api.ErrorResponse(w, r, http.StatusBadRequest, "user1Answers, user2Answers and roomId are required")
			return
		}
		l.ErrorContext(ctx, "Room generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "room generation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate date suggestions")
		return
	}

	span.SetStatus(codes.Ok, "room dates generated")
	api.WriteJSONResponse(w, r, http.StatusOK, types.GenerateRoomResponse{
		Success: true,
		Dates:   buckets,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "DuoDate API is running",
	})
}

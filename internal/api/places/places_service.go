package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/duodate-app/duodate-api/app/observability/metrics"
	"github.com/duodate-app/duodate-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service wraps the POI and event providers. All lookups degrade to
// empty results on provider failure; downstream generation must work
// with zero candidates.
type Service interface {
	FindNearby(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.PlaceCandidate
	Details(ctx context.Context, sourceID string) (*types.PlaceCandidate, error)
	EventsNear(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.EventCandidate
}

type ServiceImpl struct {
	logger        *slog.Logger
	client        *http.Client
	placesBaseURL string
	eventsBaseURL string
	apiKey        string
	cache         *cache.Cache
}

// NewServiceImpl fails hard when no POI API key is configured; unlike
// the model credential there is no degraded mode for place search.
func NewServiceImpl(placesBaseURL, eventsBaseURL string, logger *slog.Logger) (*ServiceImpl, error) {
	apiKey := os.Getenv("OPENTRIPMAP_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENTRIPMAP_API_KEY environment variable is not set")
	}
	return &ServiceImpl{
		logger:        logger,
		client:        &http.Client{Timeout: 10 * time.Second},
		placesBaseURL: strings.TrimRight(placesBaseURL, "/"),
		eventsBaseURL: strings.TrimRight(eventsBaseURL, "/"),
		apiKey:        apiKey,
		cache:         cache.New(24*time.Hour, 1*time.Hour),
	}, nil
}

// radiusPlace mirrors the provider's simple-format radius response.
type radiusPlace struct {
	XID   string  `json:"xid"`
	Name  string  `json:"name"`
	Kinds string  `json:"kinds"`
	Dist  float64 `json:"dist"`
	Point struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"point"`
}

// FindNearby returns up to limit points of interest around the given
// coordinate, empty on any provider error.
func (s *ServiceImpl) FindNearby(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.PlaceCandidate {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "FindNearby")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("geo.lat", lat),
		attribute.Float64("geo.lon", lon),
		attribute.Int("radius_m", radiusMeters),
	)

	cacheKey := fmt.Sprintf("places:%f:%f:%d:%d", lat, lon, radiusMeters, limit)
	if cached, found := s.cache.Get(cacheKey); found {
		span.AddEvent("cache hit")
		return cached.([]types.PlaceCandidate)
	}

	q := url.Values{}
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("format", "json")
	q.Set("apikey", s.apiKey)

	var raw []radiusPlace
	if err := s.getJSON(ctx, "places", s.placesBaseURL+"/radius?"+q.Encode(), &raw); err != nil {
		s.logger.WarnContext(ctx, "Place search failed, returning no candidates", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "place search failed")
		return nil
	}

	candidates := make([]types.PlaceCandidate, 0, len(raw))
	for _, p := range raw {
		if p.Name == "" {
			continue
		}
		candidates = append(candidates, types.PlaceCandidate{
			SourceID:  p.XID,
			Name:      p.Name,
			Latitude:  p.Point.Lat,
			Longitude: p.Point.Lon,
			Category:  firstKind(p.Kinds),
			Distance:  p.Dist,
		})
		if len(candidates) >= limit {
			break
		}
	}

	s.cache.Set(cacheKey, candidates, cache.DefaultExpiration)
	span.SetAttributes(attribute.Int("places.count", len(candidates)))
	span.SetStatus(codes.Ok, "places found")
	return candidates
}

// Details fetches a single place by its opaque source id.
func (s *ServiceImpl) Details(ctx context.Context, sourceID string) (*types.PlaceCandidate, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Details")
	defer span.End()

	var raw struct {
		XID   string `json:"xid"`
		Name  string `json:"name"`
		Kinds string `json:"kinds"`
		Point struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"point"`
	}
	endpoint := s.placesBaseURL + "/xid/" + url.PathEscape(sourceID) + "?apikey=" + url.QueryEscape(s.apiKey)
	if err := s.getJSON(ctx, "places", endpoint, &raw); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch place details: %w", err)
	}

	return &types.PlaceCandidate{
		SourceID:  raw.XID,
		Name:      raw.Name,
		Latitude:  raw.Point.Lat,
		Longitude: raw.Point.Lon,
		Category:  firstKind(raw.Kinds),
	}, nil
}

// EventsNear returns upcoming events around the coordinate for the
// room-prompt variant, empty on any provider error.
func (s *ServiceImpl) EventsNear(ctx context.Context, lat, lon float64, radiusMeters, limit int) []types.EventCandidate {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "EventsNear")
	defer span.End()

	q := url.Values{}
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("apikey", s.apiKey)

	var raw []struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Venue    string    `json:"venue"`
		StartsAt time.Time `json:"starts_at"`
	}
	if err := s.getJSON(ctx, "events", s.eventsBaseURL+"?"+q.Encode(), &raw); err != nil {
		s.logger.WarnContext(ctx, "Event search failed, returning no events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "event search failed")
		return nil
	}

	events := make([]types.EventCandidate, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" {
			continue
		}
		events = append(events, types.EventCandidate{
			SourceID: e.ID,
			Name:     e.Name,
			Venue:    e.Venue,
			StartsAt: e.StartsAt,
		})
		if len(events) >= limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))
	return events
}

func (s *ServiceImpl) getJSON(ctx context.Context, provider, endpoint string, out interface{}) error {
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	if m := metrics.Get(); m != nil {
		m.ProviderRequestsTotal.Add(ctx, 1, attrs)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if m := metrics.Get(); m != nil {
			m.ProviderErrorsTotal.Add(ctx, 1, attrs)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if m := metrics.Get(); m != nil {
			m.ProviderErrorsTotal.Add(ctx, 1, attrs)
		}
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// firstKind extracts the primary category from the provider's
// comma-separated kinds field.
func firstKind(kinds string) string {
	if idx := strings.IndexByte(kinds, ','); idx >= 0 {
		return kinds[:idx]
	}
	return kinds
}

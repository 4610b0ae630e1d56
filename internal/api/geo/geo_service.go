package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
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

// Service resolves free-text city names to coordinates. Resolution is
// best effort: a miss or a provider error yields nil, never an error,
// and callers proceed without geographic grounding.
type Service interface {
	ResolveCity(ctx context.Context, name string) *types.UserLocation
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

func NewServiceImpl(baseURL string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache.New(24*time.Hour, 1*time.Hour),
	}
}

// geocodeResult mirrors the provider's search response. Coordinates
// arrive as strings.
type geocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (s *ServiceImpl) ResolveCity(ctx context.Context, name string) *types.UserLocation {
	ctx, span := otel.Tracer("GeoService").Start(ctx, "ResolveCity")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	span.SetAttributes(attribute.String("geo.city", name))

	cacheKey := "geocode:" + strings.ToLower(name)
	if cached, found := s.cache.Get(cacheKey); found {
		span.AddEvent("cache hit")
		loc := cached.(types.UserLocation)
		return &loc
	}

	if m := metrics.Get(); m != nil {
		m.ProviderRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("provider", "geocode")))
	}

	result, err := s.search(ctx, name)
	if err != nil {
		// Degrade to "no grounding" rather than failing the pipeline.
		s.logger.WarnContext(ctx, "Geocoding failed, continuing without location",
			slog.String("city", name), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding failed")
		if m := metrics.Get(); m != nil {
			m.ProviderErrorsTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("provider", "geocode")))
		}
		return nil
	}
	if result == nil {
		s.logger.InfoContext(ctx, "No geocoding match", slog.String("city", name))
		return nil
	}

	lat, latErr := strconv.ParseFloat(result.Lat, 64)
	lon, lonErr := strconv.ParseFloat(result.Lon, 64)
	if latErr != nil || lonErr != nil {
		s.logger.WarnContext(ctx, "Geocoding returned unparseable coordinates",
			slog.String("lat", result.Lat), slog.String("lon", result.Lon))
		return nil
	}

	loc := types.UserLocation{
		Latitude:  lat,
		Longitude: lon,
		City:      result.DisplayName,
	}
	s.cache.Set(cacheKey, loc, cache.DefaultExpiration)

	span.SetStatus(codes.Ok, "city resolved")
	return &loc
}

// search queries the geocoding provider for the best single match.
func (s *ServiceImpl) search(ctx context.Context, name string) (*geocodeResult, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "duodate-api/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode provider returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

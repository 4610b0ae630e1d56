package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	GenerationRequestsTotal  metric.Int64Counter
	GenerationFallbackTotal  metric.Int64Counter // attribute "reason" carries the failure kind
	GenerationDurationSecs   metric.Float64Histogram
	MoodComplianceRatio      metric.Float64Histogram
	ProviderRequestsTotal    metric.Int64Counter // attribute "provider": geocode|places|events|model
	ProviderErrorsTotal      metric.Int64Counter
	CommunityIdeasFetchTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using
// the globally configured meter provider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("DuoDateAPI")
		var err error
		m := &AppMetrics{}

		m.GenerationRequestsTotal, err = meter.Int64Counter(
			"date_generation_requests_total",
			metric.WithDescription("Total number of date suggestion generation requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create date_generation_requests_total: %v", err)
		}

		m.GenerationFallbackTotal, err = meter.Int64Counter(
			"date_generation_fallback_total",
			metric.WithDescription("Generation calls that degraded to the static fallback set, by reason"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create date_generation_fallback_total: %v", err)
		}

		m.GenerationDurationSecs, err = meter.Float64Histogram(
			"date_generation_duration_seconds",
			metric.WithDescription("Duration of end-to-end suggestion generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create date_generation_duration_seconds: %v", err)
		}

		m.MoodComplianceRatio, err = meter.Float64Histogram(
			"mood_compliance_ratio",
			metric.WithDescription("Share of model suggestions whose category matched the requested mood"),
			metric.WithUnit("1"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create mood_compliance_ratio: %v", err)
		}

		m.ProviderRequestsTotal, err = meter.Int64Counter(
			"upstream_provider_requests_total",
			metric.WithDescription("Requests issued to upstream providers"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_provider_requests_total: %v", err)
		}

		m.ProviderErrorsTotal, err = meter.Int64Counter(
			"upstream_provider_errors_total",
			metric.WithDescription("Upstream provider requests that failed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_provider_errors_total: %v", err)
		}

		m.CommunityIdeasFetchTotal, err = meter.Int64Counter(
			"community_ideas_fetch_total",
			metric.WithDescription("Best-effort community date idea lookups"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create community_ideas_fetch_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics, or nil when InitAppMetrics was
// never called (tests).
func Get() *AppMetrics {
	return appMetrics
}

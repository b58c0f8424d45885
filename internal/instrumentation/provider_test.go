package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prometheusConfig() Config {
	return Config{
		ServiceName:      "retell-booking",
		ServiceVersion:   "1.0.0",
		CalendarID:       "clinic@example.com",
		TimeZone:         "America/New_York",
		Enabled:          true,
		MetricsExporter:  ExporterPrometheus,
		TracingExporter:  ExporterNone,
		TraceSampleRatio: 0.1,
	}
}

func newConfiguredTestProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()
	provider, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	handler := provider.MetricsHandler()
	require.NotNil(t, handler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, MetricsExporter: "bogus"})
	require.NoError(t, err, "a disabled provider ignores exporter settings")

	assert.False(t, provider.Enabled())
	assert.Nil(t, provider.MetricsHandler())
	require.NotNil(t, provider.Metrics())
	provider.Metrics().RecordBookingOutcome(context.Background(), "book", "confirmed")
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_PrometheusLabelsSeriesWithCalendar(t *testing.T) {
	provider := newConfiguredTestProvider(t, prometheusConfig())
	require.True(t, provider.Enabled())

	ctx := context.Background()
	m := provider.Metrics()
	m.RecordBookingOutcome(ctx, "book", "confirmed")
	m.RecordBookingOutcome(ctx, "check_slot", "unavailable")
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationFreeBusy, StatusSuccess, 120*time.Millisecond)
	m.RecordHTTPRequest(ctx, http.MethodPost, "/v1/book", http.StatusOK, 300*time.Millisecond)
	m.RecordRateLimited(ctx, LimiterLocal)

	body := scrape(t, provider)

	for _, want := range []string{
		"booking_outcomes_total{",
		`operation="book"`,
		`status="confirmed"`,
		`status="unavailable"`,
		`booking_calendar_id="clinic@example.com"`,
		`booking_time_zone="America/New_York"`,
		"google_api_operations_total{",
		`operation="freebusy"`,
		"http_requests_total{",
		`path="/v1/book"`,
		"http_rate_limited_total{",
		`limiter="local"`,
		"target_info{",
		`service_name="retell-booking"`,
		"go_goroutines",
	} {
		assert.Contains(t, body, want)
	}
}

func TestNewProvider_RegistriesAreIndependent(t *testing.T) {
	first := newConfiguredTestProvider(t, prometheusConfig())
	cfg := prometheusConfig()
	cfg.CalendarID = "second@example.com"
	second := newConfiguredTestProvider(t, cfg)

	first.Metrics().RecordBookingOutcome(context.Background(), "book", "confirmed")

	assert.Contains(t, scrape(t, first), `booking_calendar_id="clinic@example.com"`)
	body := scrape(t, second)
	assert.NotContains(t, body, "clinic@example.com")
	assert.NotContains(t, body, "booking_outcomes_total{")
}

func TestNewProvider_StdoutExporters(t *testing.T) {
	cfg := prometheusConfig()
	cfg.MetricsExporter = ExporterStdout
	cfg.TracingExporter = ExporterStdout

	provider := newConfiguredTestProvider(t, cfg)
	assert.True(t, provider.Enabled())
	assert.Nil(t, provider.MetricsHandler(), "only the prometheus exporter is scraped")
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown metrics exporter": func(c *Config) { c.MetricsExporter = "statsd" },
		"unknown tracing exporter": func(c *Config) { c.TracingExporter = "jaeger" },
		"otlp without endpoint":    func(c *Config) { c.TracingExporter = ExporterOTLP },
		"sample ratio above one":   func(c *Config) { c.TraceSampleRatio = 1.5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := prometheusConfig()
			mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone data for hosts without a tz database

	"github.com/joho/godotenv"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

// Defaults for non-scheduling settings.
const (
	DefaultCalendarID         = "primary"
	DefaultSheetRange         = "Bookings!A:I"
	DefaultProviderTimeout    = 10 * time.Second
	DefaultEventSummaryPrefix = "Consultation"
	DefaultHTTPAddr           = ":8080"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultRateLimitRPS       = 5.0
	DefaultRateLimitBurst     = 10
	DefaultRateLimitPerMinute = 60
	DefaultServiceName        = "retell-booking"
	DefaultTraceSampleRatio   = 0.1
)

// ConfigurationError reports an environment value that cannot be used.
// It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// Config is the complete process configuration.
type Config struct {
	Scheduling scheduling.Config
	Google     GoogleConfig
	RateLimit  RateLimitConfig
	Telemetry  TelemetryConfig

	// ProviderTimeout bounds every calendar and sheet call.
	ProviderTimeout time.Duration

	// EventSummaryPrefix starts the title of every calendar event.
	EventSummaryPrefix string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	// WebhookSecret, when set, must be presented in X-Webhook-Secret.
	WebhookSecret string
}

// GoogleConfig selects the calendar, the optional sheet and the credentials.
type GoogleConfig struct {
	CalendarID      string
	CredentialsFile string
	CredentialsJSON string

	// SheetID enables the record sink when non-empty.
	SheetID    string
	SheetRange string
}

// RateLimitConfig configures the API rate limiter. With RedisURL set the
// limit is shared across replicas, otherwise it is a per-process token bucket.
type RateLimitConfig struct {
	RPS       float64
	Burst     int
	RedisURL  string
	PerMinute int
}

// TelemetryConfig selects the metrics and trace exporters.
type TelemetryConfig struct {
	ServiceName      string
	Enabled          bool
	MetricsExporter  string
	TracingExporter  string
	OTLPEndpoint     string
	OTLPInsecure     bool
	TraceSampleRatio float64

	// AuditLogging writes one log line per MCP tool call.
	AuditLogging bool
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
// Every invalid variable is reported; the returned error joins one
// *ConfigurationError per problem.
func FromEnv() (*Config, error) {
	r := &envReader{}

	cfg := &Config{
		Scheduling: scheduling.Config{
			LeadMinutes:       r.intVar("BOOKING_LEAD_MINUTES", scheduling.DefaultLeadMinutes),
			DurationMinutes:   r.intVar("BOOKING_DURATION_MINUTES", scheduling.DefaultDurationMinutes),
			StepMinutes:       r.intVar("BOOKING_STEP_MINUTES", scheduling.DefaultStepMinutes),
			SearchDays:        r.intVar("BOOKING_SEARCH_DAYS", scheduling.DefaultSearchDays),
			BusinessStartHour: r.intVar("BOOKING_BUSINESS_START_HOUR", scheduling.DefaultBusinessStartHour),
			BusinessEndHour:   r.intVar("BOOKING_BUSINESS_END_HOUR", scheduling.DefaultBusinessEndHour),
			TimeZone:          getEnvOrDefault("BOOKING_TIMEZONE", scheduling.DefaultTimeZone),
		},
		Google: GoogleConfig{
			CalendarID:      getEnvOrDefault("GOOGLE_CALENDAR_ID", DefaultCalendarID),
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
			CredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
			SheetID:         os.Getenv("GOOGLE_SHEET_ID"),
			SheetRange:      getEnvOrDefault("GOOGLE_SHEET_RANGE", DefaultSheetRange),
		},
		RateLimit: RateLimitConfig{
			RPS:       r.floatVar("RATE_LIMIT_RPS", DefaultRateLimitRPS),
			Burst:     r.intVar("RATE_LIMIT_BURST", DefaultRateLimitBurst),
			RedisURL:  os.Getenv("REDIS_URL"),
			PerMinute: r.intVar("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute),
		},
		Telemetry: TelemetryConfig{
			ServiceName:      getEnvOrDefault("OTEL_SERVICE_NAME", DefaultServiceName),
			Enabled:          r.boolVar("INSTRUMENTATION_ENABLED", true),
			MetricsExporter:  strings.ToLower(getEnvOrDefault("METRICS_EXPORTER", instrumentation.ExporterPrometheus)),
			TracingExporter:  strings.ToLower(getEnvOrDefault("TRACING_EXPORTER", instrumentation.ExporterNone)),
			OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			OTLPInsecure:     r.boolVar("OTEL_EXPORTER_OTLP_INSECURE", false),
			TraceSampleRatio: r.floatVar("OTEL_TRACES_SAMPLER_ARG", DefaultTraceSampleRatio),
			AuditLogging:     r.boolVar("AUDIT_LOGGING_ENABLED", true),
		},
		ProviderTimeout:    r.durationVar("PROVIDER_TIMEOUT", DefaultProviderTimeout),
		EventSummaryPrefix: getEnvOrDefault("EVENT_SUMMARY_PREFIX", DefaultEventSummaryPrefix),
		HTTPAddr:           getEnvOrDefault("HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:           strings.ToLower(getEnvOrDefault("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:          strings.ToLower(getEnvOrDefault("LOG_FORMAT", DefaultLogFormat)),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
	}

	loc, err := time.LoadLocation(cfg.Scheduling.TimeZone)
	if err != nil {
		r.fail("BOOKING_TIMEZONE", fmt.Sprintf("unknown time zone %q", cfg.Scheduling.TimeZone))
	} else {
		cfg.Scheduling.Location = loc
		if err := cfg.Scheduling.Validate(); err != nil {
			r.fail("BOOKING_*", err.Error())
		}
	}

	r.errs = append(r.errs, cfg.validate()...)
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if c.ProviderTimeout <= 0 {
		errs = append(errs, &ConfigurationError{Field: "PROVIDER_TIMEOUT", Reason: "must be positive"})
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ConfigurationError{Field: "LOG_LEVEL", Reason: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, &ConfigurationError{Field: "LOG_FORMAT", Reason: fmt.Sprintf("unknown format %q", c.LogFormat)})
	}
	if c.RateLimit.RPS <= 0 {
		errs = append(errs, &ConfigurationError{Field: "RATE_LIMIT_RPS", Reason: "must be positive"})
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, &ConfigurationError{Field: "RATE_LIMIT_BURST", Reason: "must be positive"})
	}
	if c.RateLimit.PerMinute <= 0 {
		errs = append(errs, &ConfigurationError{Field: "RATE_LIMIT_PER_MINUTE", Reason: "must be positive"})
	}
	if c.Telemetry.Enabled {
		if err := c.Instrumentation("").Validate(); err != nil {
			errs = append(errs, &ConfigurationError{Field: "telemetry", Reason: err.Error()})
		}
	}
	if c.Google.CredentialsFile != "" && c.Google.CredentialsJSON != "" {
		errs = append(errs, &ConfigurationError{Field: "GOOGLE_CREDENTIALS_JSON", Reason: "set only one of GOOGLE_CREDENTIALS_FILE and GOOGLE_CREDENTIALS_JSON"})
	}
	return errs
}

// SheetEnabled reports whether confirmed bookings are appended to a sheet.
func (c *Config) SheetEnabled() bool {
	return c.Google.SheetID != ""
}

// Instrumentation describes this deployment to the telemetry provider: the
// exporters plus the calendar and time zone every series is labeled with.
func (c *Config) Instrumentation(version string) instrumentation.Config {
	return instrumentation.Config{
		ServiceName:      c.Telemetry.ServiceName,
		ServiceVersion:   version,
		CalendarID:       c.Google.CalendarID,
		TimeZone:         c.Scheduling.TimeZone,
		Enabled:          c.Telemetry.Enabled,
		MetricsExporter:  c.Telemetry.MetricsExporter,
		TracingExporter:  c.Telemetry.TracingExporter,
		OTLPEndpoint:     c.Telemetry.OTLPEndpoint,
		OTLPInsecure:     c.Telemetry.OTLPInsecure,
		TraceSampleRatio: c.Telemetry.TraceSampleRatio,
	}
}

// envReader parses typed variables and collects every failure.
type envReader struct {
	errs []error
}

func (r *envReader) fail(field, reason string) {
	r.errs = append(r.errs, &ConfigurationError{Field: field, Reason: reason})
}

func (r *envReader) intVar(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, fmt.Sprintf("%q is not an integer", value))
		return defaultValue
	}
	return parsed
}

func (r *envReader) floatVar(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		r.fail(key, fmt.Sprintf("%q is not a number", value))
		return defaultValue
	}
	return parsed
}

func (r *envReader) boolVar(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, fmt.Sprintf("%q is not a boolean", value))
		return defaultValue
	}
	return parsed
}

func (r *envReader) durationVar(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, fmt.Sprintf("%q is not a duration", value))
		return defaultValue
	}
	return parsed
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package instrumentation

import (
	"errors"
	"fmt"
)

// Exporter names accepted for metrics and traces.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Resource attribute keys describing the booking deployment. Both are also
// constant labels on every Prometheus series.
const (
	ResourceAttrCalendarID = "booking.calendar_id"
	ResourceAttrTimeZone   = "booking.time_zone"
)

// Config describes the deployment being instrumented and where its
// telemetry is sent.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// CalendarID and TimeZone identify the calendar this replica books into.
	CalendarID string
	TimeZone   string

	// Enabled false hands out a no-op recorder and leaves the otel globals alone.
	Enabled bool

	// MetricsExporter is prometheus, otlp or stdout.
	MetricsExporter string

	// TracingExporter is otlp, stdout or none.
	TracingExporter string

	// OTLPEndpoint is host:port without a scheme. Spans carry hashed contact
	// identifiers, so OTLPInsecure is for local collectors only.
	OTLPEndpoint string
	OTLPInsecure bool

	// TraceSampleRatio applies to root spans; child spans follow their parent.
	TraceSampleRatio float64
}

// Validate reports the first setting NewProvider cannot act on.
func (c Config) Validate() error {
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %g", c.TraceSampleRatio)
	}
	switch c.MetricsExporter {
	case ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("unknown metrics exporter %q (want prometheus, otlp or stdout)", c.MetricsExporter)
	}
	switch c.TracingExporter {
	case ExporterNone, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("unknown tracing exporter %q (want otlp, stdout or none)", c.TracingExporter)
	}
	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return errors.New("the otlp exporter needs an endpoint")
	}
	return nil
}

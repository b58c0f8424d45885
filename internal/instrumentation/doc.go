// Package instrumentation provides OpenTelemetry instrumentation for the
// booking service.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, route, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - http_rate_limited_total: Counter of requests rejected by limiter
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// Booking Metrics:
//   - booking_outcomes_total: Counter of availability, check and booking operations by status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Every Prometheus series carries booking_calendar_id and booking_time_zone
// labels taken from the resource, and the registry is private to the
// Provider rather than the process-wide default.
//
// # Tracing
//
// Spans are created for booking operations (booking.<operation>, tagged with
// booking.status), MCP tool invocations (tool.<name>) and Google API calls
// (google.<service>.<operation>, tagged with the calendar or sheet ID).
// Only a provider failure marks a booking span as an error.
//
// # Configuration
//
// Config is built from the process configuration, which reads
// INSTRUMENTATION_ENABLED, METRICS_EXPORTER (prometheus, otlp, stdout),
// TRACING_EXPORTER (otlp, stdout, none), OTEL_EXPORTER_OTLP_ENDPOINT and
// OTEL_TRACES_SAMPLER_ARG. OTEL_RESOURCE_ATTRIBUTES adds resource attributes.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, cfg.Instrumentation(version))
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordGoogleAPIOperation(ctx, "calendar", "freebusy", "success", time.Since(start))
//	metrics.RecordBookingOutcome(ctx, "book", "confirmed")
package instrumentation

// Package server provides the HTTP surface of the booking service.
//
// # Key Components
//
// ServerContext holds the booking service together with the metrics
// recorder, the audit logger and the dependencies reported on by health
// checks. HTTP handlers and MCP tools share one ServerContext.
//
// NewRouter builds the chi router:
//   - POST /v1/availability, /v1/slots/check and /v1/bookings run the
//     booking operations and always answer 200 with a status field, except
//     for an unreadable body (400)
//   - /mcp serves the MCP streamable HTTP transport
//   - /healthz, /readyz and /healthz/detailed serve Kubernetes probes
//
// # Middleware
//
// Every request gets a request ID (X-Request-Id), a log line, HTTP metrics
// and panic recovery. API and MCP routes are additionally rate limited per
// client, either in process (LocalLimiter, golang.org/x/time/rate) or shared
// across replicas (RedisLimiter), and may require a shared secret in
// X-Webhook-Secret.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server

package server

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
)

// Pinger is a dependency whose reachability is reported by the detailed
// health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerContext holds what the HTTP handlers and MCP tools share: the
// booking service, instrumentation and the dependencies behind them.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	service     *booking.Service
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	deps        map[string]Pinger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context around service.
func NewServerContext(ctx context.Context, service *booking.Service) (*ServerContext, error) {
	if service == nil {
		return nil, fmt.Errorf("booking service is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		service: service,
		deps:    make(map[string]Pinger),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Service returns the booking service.
func (sc *ServerContext) Service() *booking.Service {
	return sc.service
}

// SetMetrics sets the metrics recorder. A nil recorder disables metrics.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// AddDependency registers a dependency for health reporting.
func (sc *ServerContext) AddDependency(name string, p Pinger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.deps[name] = p
}

// dependencies returns the registered dependency names in sorted order with
// their pingers.
func (sc *ServerContext) dependencies() ([]string, map[string]Pinger) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	names := make([]string, 0, len(sc.deps))
	deps := make(map[string]Pinger, len(sc.deps))
	for name, p := range sc.deps {
		names = append(names, name)
		deps[name] = p
	}
	sort.Strings(names)
	return names, deps
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

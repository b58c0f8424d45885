package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/logging"
)

// DefaultMetricsAddr keeps the scrape endpoint off the public API port.
const DefaultMetricsAddr = ":9090"

// MetricsServer serves the provider's Prometheus registry on its own
// listener. Booking outcomes, calendar latency and limiter rejections are
// scraped here, labeled with the calendar the replica books into.
type MetricsServer struct {
	addr   string
	srv    *http.Server
	logger *slog.Logger
}

// NewMetricsServer fails unless provider exports metrics to Prometheus.
func NewMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*MetricsServer, error) {
	if provider == nil {
		return nil, errors.New("instrumentation provider is required for the metrics server")
	}
	handler := provider.MetricsHandler()
	if handler == nil {
		return nil, errors.New("metrics are not exported to prometheus")
	}
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", handler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr:   addr,
		srv:    NewHTTPServer(addr, r),
		logger: logger,
	}, nil
}

// Start binds the listener and serves in the background. Bind failures are
// returned; errors after that are logged.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return nil
}

// Shutdown stops the server. It is safe to call without Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr is the configured address, or the bound one once started.
func (s *MetricsServer) Addr() string {
	return s.addr
}

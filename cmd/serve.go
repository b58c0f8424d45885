package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/tristankerr161/retell-booking/internal/config"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/logging"
	"github.com/tristankerr161/retell-booking/internal/server"
	"github.com/tristankerr161/retell-booking/internal/tools/booking_tools"
)

// Transport types accepted by --transport.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	// Enabled determines whether the metrics server is started
	Enabled bool
	// Addr is the metrics server address (e.g., ":9090")
	Addr string
}

// serveOptions are the flag values of the serve command.
type serveOptions struct {
	transport string
	httpAddr  string
	logLevel  string
	logFormat string
	debugMode bool
	metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API and MCP server",
		Long: `Start the appointment booking server.

With the http transport (default) the server exposes the JSON API used by
voice agent webhooks under /v1, the MCP streamable HTTP endpoint at /mcp and
health probes. With the stdio transport only the MCP tools are served, over
standard input and output.

Configuration is read from the environment and an optional .env file.
Flags override the corresponding variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			applyServeFlags(cmd, &opts, cfg)
			return runServe(cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", TransportHTTP, "Transport type: http or stdio")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", config.DefaultHTTPAddr, "HTTP server address. Can also use HTTP_ADDR env var.")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error. Can also use LOG_LEVEL env var.")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", config.DefaultLogFormat, "Log format: json or text. Can also use LOG_FORMAT env var.")
	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyServeFlags merges explicitly set flags into cfg and fills metrics
// settings from the environment when their flags were not set.
func applyServeFlags(cmd *cobra.Command, opts *serveOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = opts.httpAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if opts.debugMode {
		cfg.LogLevel = "debug"
	}

	if !flags.Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			opts.metrics.Enabled = v == "true"
		}
	}
	if !flags.Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}
}

func runServe(cfg *config.Config, opts serveOptions) error {
	if opts.transport != TransportHTTP && opts.transport != TransportStdio {
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr; stdout carries the MCP protocol in stdio mode.
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	slog.SetDefault(logger)

	provider, err := instrumentation.NewProvider(shutdownCtx, cfg.Instrumentation(version))
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != TransportStdio && opts.metrics.Enabled && provider.MetricsHandler() != nil {
		metricsServer, err = server.NewMetricsServer(opts.metrics.Addr, provider, logger)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
		logger.Info("Metrics server started", slog.String("addr", metricsServer.Addr()))
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	a, err := newApp(shutdownCtx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(shutdownCtx, a.service)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLogger(logger, cfg.Telemetry.AuditLogging))
	}
	for name, dep := range a.deps {
		serverContext.AddDependency(name, dep)
	}

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	switch opts.transport {
	case TransportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runHTTPServer(shutdownCtx, cfg, mcpSrv, serverContext, logger)
	}
}

// newMCPServer creates the MCP server with the booking tools registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("retell-booking", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := booking_tools.RegisterBookingTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register booking tools: %w", err)
	}
	return mcpSrv, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, cfg *config.Config, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, logger *slog.Logger) error {
	limiter, stopLimiter, err := newLimiter(ctx, cfg.RateLimit, sc)
	if err != nil {
		return err
	}
	defer stopLimiter()

	health := server.NewHealthChecker(sc)
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv, mcpserver.WithEndpointPath("/mcp"))

	router := server.NewRouter(server.RouterConfig{
		ServerContext: sc,
		Health:        health,
		Limiter:       limiter,
		WebhookSecret: cfg.WebhookSecret,
		MCPHandler:    mcpHandler,
		Logger:        logger,
	})
	httpServer := server.NewHTTPServer(cfg.HTTPAddr, router)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	logger.Info("HTTP server started",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("time_zone", cfg.Scheduling.TimeZone),
		slog.String("limiter", limiter.Name()),
		slog.Bool("webhook_secret", cfg.WebhookSecret != ""))

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := errors.Join(httpServer.Shutdown(shutdownCtx), mcpHandler.Shutdown(shutdownCtx)); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// newLimiter returns the shared Redis limiter when a Redis URL is configured
// and a per-process limiter otherwise. The returned func releases it.
func newLimiter(ctx context.Context, rl config.RateLimitConfig, sc *server.ServerContext) (server.Limiter, func(), error) {
	if rl.RedisURL == "" {
		l := server.NewLocalLimiter(rl.RPS, rl.Burst, time.Minute)
		return l, l.Stop, nil
	}

	rdb, err := server.NewRedisClient(ctx, rl.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	l := server.NewRedisLimiter(rdb, rl.PerMinute, time.Minute, server.DefaultRedisKeyPrefix)
	sc.AddDependency("redis", l)
	return l, func() { _ = rdb.Close() }, nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/logging"
)

const (
	// MaxRequestBodyBytes caps API request bodies.
	MaxRequestBodyBytes = 64 << 10

	// DefaultReadHeaderTimeout is the API server's header read timeout.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout covers the slowest booking path: several calendar
	// calls plus the sheet append, each bounded by the provider timeout.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the keep-alive timeout.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout bounds the drain of in-flight requests.
	DefaultShutdownTimeout = 30 * time.Second
)

// RouterConfig wires the API router.
type RouterConfig struct {
	ServerContext *ServerContext
	Health        *HealthChecker

	// Limiter is optional.
	Limiter Limiter

	// WebhookSecret, when set, is required on every API and MCP request.
	WebhookSecret string

	// MCPHandler serves the MCP streamable HTTP transport at /mcp. Optional.
	MCPHandler http.Handler

	Logger *slog.Logger
}

// NewRouter builds the HTTP API.
//
// Health endpoints sit outside the rate limit and the secret check so probes
// keep working; everything else goes through both.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.ServerContext.Metrics()

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(logger, metrics))
	r.Use(Recoverer(logger))

	if cfg.Health != nil {
		cfg.Health.RegisterHealthEndpoints(r)
	}

	h := &apiHandler{sc: cfg.ServerContext, logger: logger}

	r.Group(func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(RateLimit(cfg.Limiter, metrics, logger))
		}
		r.Use(WebhookSecret(cfg.WebhookSecret))

		r.Route("/v1", func(r chi.Router) {
			r.Post("/availability", h.availability)
			r.Post("/slots/check", h.checkSlot)
			r.Post("/bookings", h.book)
		})

		if cfg.MCPHandler != nil {
			r.Handle("/mcp", cfg.MCPHandler)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}

// NewHTTPServer returns an http.Server for handler with the API timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
}

type apiHandler struct {
	sc     *ServerContext
	logger *slog.Logger
}

type operation func(ctx context.Context, body []byte) (booking.Result, error)

func (h *apiHandler) availability(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.sc.Service().HandleAvailability)
}

func (h *apiHandler) checkSlot(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.sc.Service().HandleCheckSlot)
}

func (h *apiHandler) book(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.sc.Service().HandleBook)
}

func (h *apiHandler) serve(w http.ResponseWriter, r *http.Request, op operation) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Could not read request body.")
		return
	}

	res, err := op(r.Context(), body)
	if err != nil {
		h.logger.Info("rejected request body",
			logging.RequestID(RequestIDFromContext(r.Context())),
			logging.Err(err),
		)
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
		return
	}

	writeJSON(w, http.StatusOK, res.Response())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the error shape shared with booking responses so callers
// only ever parse one body format.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, booking.Response{
		Status:       booking.StatusError,
		Message:      message,
		Alternatives: []booking.SlotView{},
	})
}

package server

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/logging"
)

// DefaultLimiterCleanupInterval is how often idle client buckets are dropped.
const DefaultLimiterCleanupInterval = 5 * time.Minute

// Limiter decides whether a client may make another request.
type Limiter interface {
	// Allow consumes one request for key.
	Allow(ctx context.Context, key string) (bool, error)

	// RetryAfter is the wait suggested to a rejected client.
	RetryAfter() time.Duration

	// Name labels the limiter in metrics.
	Name() string
}

// RateLimit rejects requests over the limiter's budget with 429. Limiter
// errors let the request through.
func RateLimit(l Limiter, metrics *instrumentation.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter error", slog.String("limiter", l.Name()), logging.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RecordRateLimited(r.Context(), l.Name())
				logger.Warn("rate limit exceeded",
					slog.String("limiter", l.Name()),
					logging.RequestID(RequestIDFromContext(r.Context())),
				)
				retry := int(math.Ceil(l.RetryAfter().Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller: the last X-Forwarded-For hop when behind
// a proxy, otherwise the remote address. Only the last hop is appended by
// the proxy in front of the service; earlier hops come from the client.
func clientKey(r *http.Request) string {
	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		hops := strings.Split(values[len(values)-1], ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

type clientBucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter is a per-client token bucket held in process memory.
type LocalLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*clientBucket

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// NewLocalLimiter creates a limiter allowing rps requests per second with the
// given burst per client. It starts a cleanup goroutine; call Stop when done.
func NewLocalLimiter(rps float64, burst int, cleanupInterval time.Duration) *LocalLimiter {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultLimiterCleanupInterval
	}
	l := &LocalLimiter{
		rps:             rate.Limit(rps),
		burst:           burst,
		buckets:         make(map[string]*clientBucket),
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow implements Limiter.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = time.Now()
	l.mu.Unlock()

	return b.limiter.Allow(), nil
}

// RetryAfter implements Limiter: the time to refill one token.
func (l *LocalLimiter) RetryAfter() time.Duration {
	if l.rps <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(l.rps))
}

// Name implements Limiter.
func (l *LocalLimiter) Name() string {
	return instrumentation.LimiterLocal
}

// Len returns the number of tracked clients.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the cleanup goroutine.
func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops buckets idle for more than two cleanup intervals.
func (l *LocalLimiter) cleanup(now time.Time) {
	ttl := 2 * l.cleanupInterval

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > ttl {
			delete(l.buckets, key)
		}
	}
}

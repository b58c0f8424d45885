package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

var est = time.FixedZone("EST", -5*3600)

// monday0800 is the service clock in every test.
var monday0800 = time.Date(2025, time.February, 10, 8, 0, 0, 0, est)

type stubCalendar struct {
	mu       sync.Mutex
	busy     []scheduling.Interval
	err      error
	reserved []scheduling.Slot
}

func (c *stubCalendar) QueryBusy(context.Context, time.Time, time.Time) ([]scheduling.Interval, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy, c.err
}

func (c *stubCalendar) Reserve(_ context.Context, slot scheduling.Slot, _ booking.Metadata) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reserved = append(c.reserved, slot)
	return "evt-1", nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var errUnreachable = errors.New("unreachable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServerContext(t *testing.T, cal *stubCalendar) *ServerContext {
	t.Helper()
	cfg := scheduling.DefaultConfig(est)
	cfg.TimeZone = "EST"
	svc, err := booking.NewService(cfg, cal,
		booking.WithClock(func() time.Time { return monday0800 }),
		booking.WithLogger(discardLogger()),
	)
	require.NoError(t, err)

	sc, err := NewServerContext(context.Background(), svc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

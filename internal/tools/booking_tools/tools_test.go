package booking_tools

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
	"github.com/tristankerr161/retell-booking/internal/server"
	"github.com/tristankerr161/retell-booking/internal/tools/common"
)

var est = time.FixedZone("EST", -5*3600)

type fakeCalendar struct {
	mu       sync.Mutex
	busy     []scheduling.Interval
	reserved []booking.Metadata
}

func (f *fakeCalendar) QueryBusy(context.Context, time.Time, time.Time) ([]scheduling.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy, nil
}

func (f *fakeCalendar) Reserve(_ context.Context, _ scheduling.Slot, meta booking.Metadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserved = append(f.reserved, meta)
	return "evt-42", nil
}

func newServerContext(t *testing.T, cal *fakeCalendar) *server.ServerContext {
	t.Helper()
	cfg := scheduling.DefaultConfig(est)
	cfg.TimeZone = "EST"
	svc, err := booking.NewService(cfg, cal, booking.WithClock(func() time.Time {
		return time.Date(2025, time.February, 10, 8, 0, 0, 0, est)
	}))
	require.NoError(t, err)
	sc, err := server.NewServerContext(context.Background(), svc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func call(t *testing.T, op operation, args map[string]any) (*mcp.CallToolResult, booking.Response) {
	t.Helper()
	result, err := runWith(op)(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	resp, _ := result.StructuredContent.(booking.Response)
	return result, resp
}

func TestRegisterBookingTools(t *testing.T) {
	sc := newServerContext(t, &fakeCalendar{})
	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	require.NoError(t, RegisterBookingTools(mcpSrv, sc))

	tools := mcpSrv.ListTools()
	for _, name := range []string{ToolFindSlots, ToolCheckSlot, ToolBookAppointment} {
		assert.Contains(t, tools, name)
	}
	assert.Contains(t, tools[ToolFindSlots].Tool.Description, "30 minutes")

	assert.Error(t, RegisterBookingTools(mcpSrv, nil))
}

func TestFindSlots(t *testing.T) {
	sc := newServerContext(t, &fakeCalendar{})

	result, resp := call(t, sc.Service().HandleAvailability, map[string]any{"count": 2})
	assert.False(t, result.IsError)
	assert.Equal(t, booking.StatusAvailable, resp.Status)
	require.Len(t, resp.Alternatives, 2)
	assert.Equal(t, "2025-02-10T10:00:00-05:00", resp.Alternatives[0].Start)
}

func TestCheckSlot_Busy(t *testing.T) {
	cal := &fakeCalendar{busy: []scheduling.Interval{{
		Start: time.Date(2025, time.February, 11, 14, 0, 0, 0, est),
		End:   time.Date(2025, time.February, 11, 15, 0, 0, 0, est),
	}}}
	sc := newServerContext(t, cal)

	result, resp := call(t, sc.Service().HandleCheckSlot, map[string]any{"requested_instant": "2025-02-11T14:00"})
	assert.False(t, result.IsError)
	assert.Equal(t, booking.StatusUnavailable, resp.Status)
	assert.Len(t, resp.Alternatives, 2)
	assert.Equal(t, "unavailable", common.Outcome(result))
}

func TestBookAppointment(t *testing.T) {
	cal := &fakeCalendar{}
	sc := newServerContext(t, cal)

	_, resp := call(t, sc.Service().HandleBook, map[string]any{
		"full_name":         "Ada Lovelace",
		"phone":             "+1 555 010 0199",
		"business_type":     "bakery",
		"requested_instant": "2025-02-11T14:00",
	})
	assert.Equal(t, booking.StatusConfirmed, resp.Status)
	assert.Equal(t, "evt-42", resp.EventID)
	require.Len(t, cal.reserved, 1)
	assert.Equal(t, "bakery", cal.reserved[0].BusinessType)
}

func TestBookAppointment_MissingArguments(t *testing.T) {
	cal := &fakeCalendar{}
	sc := newServerContext(t, cal)

	result, resp := call(t, sc.Service().HandleBook, nil)
	assert.False(t, result.IsError)
	assert.Equal(t, booking.StatusInvalidRequest, resp.Status)
	require.Len(t, resp.Alternatives, 2)
	assert.Equal(t, "2025-02-10T10:00:00-05:00", resp.Alternatives[0].Start)
	assert.Empty(t, cal.reserved)
}

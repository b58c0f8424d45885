package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
	"github.com/tristankerr161/retell-booking/internal/server"
)

type emptyCalendar struct{}

func (emptyCalendar) QueryBusy(context.Context, time.Time, time.Time) ([]scheduling.Interval, error) {
	return nil, nil
}

func (emptyCalendar) Reserve(context.Context, scheduling.Slot, booking.Metadata) (string, error) {
	return "evt", nil
}

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	svc, err := booking.NewService(scheduling.DefaultConfig(time.UTC), emptyCalendar{})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	sc, err := server.NewServerContext(context.Background(), svc)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	_, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), mcp.CallToolRequest{})
	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_MetricsAndAudit(t *testing.T) {
	ctx := context.Background()
	sc := newServerContext(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	sc.SetMetrics(metrics)

	var logs bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&logs, nil)), true))

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ResultFromBooking(booking.Result{Status: booking.StatusError, Message: "calendar down"}), nil
	}
	result, err := InstrumentedToolHandler("booking_check_slot", sc, handler)(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an error status")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				if status.AsString() == "error" && dp.Value == 1 {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected one error tool invocation to be counted")
	}

	line := logs.String()
	for _, want := range []string{`"msg":"tool_failed"`, `"tool":"booking_check_slot"`, `"outcome":"error"`} {
		if !strings.Contains(line, want) {
			t.Errorf("audit log %q missing %s", line, want)
		}
	}
}

func TestOutcome(t *testing.T) {
	if got := Outcome(nil); got != "" {
		t.Errorf("Outcome(nil) = %q", got)
	}
	if got := Outcome(mcp.NewToolResultText("plain")); got != "" {
		t.Errorf("Outcome(text) = %q", got)
	}
	res := ResultFromBooking(booking.Result{Status: booking.StatusConfirmed, Message: "booked"})
	if got := Outcome(res); got != "confirmed" {
		t.Errorf("Outcome(confirmed) = %q", got)
	}
}

func TestResultFromBooking(t *testing.T) {
	res := ResultFromBooking(booking.Result{Status: booking.StatusUnavailable, Message: "That time is taken."})
	if res.IsError {
		t.Error("unavailable is not an error result")
	}
	if len(res.Content) == 0 {
		t.Fatal("expected text content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	if text.Text != "That time is taken." {
		t.Errorf("text = %q", text.Text)
	}
	resp, ok := res.StructuredContent.(booking.Response)
	if !ok || resp.Status != booking.StatusUnavailable {
		t.Errorf("structured content = %#v", res.StructuredContent)
	}
}

package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withRecorder installs a recording tracer provider for the duration of the test.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := map[attribute.Key]string{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestOperationSpan(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		status   string
		failure  error
		wantCode codes.Code
	}{
		{name: "confirmed booking", op: "book", status: "confirmed", wantCode: codes.Ok},
		{name: "taken slot is not a failure", op: "check_slot", status: "unavailable", wantCode: codes.Ok},
		{name: "rejected time is not a failure", op: "book", status: "invalid_time", wantCode: codes.Ok},
		{name: "calendar down", op: "availability", status: "error", failure: errors.New("calendar timeout"), wantCode: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := withRecorder(t)

			_, span := StartOperationSpan(context.Background(), tt.op)
			SetOperationStatus(span, tt.status, tt.failure)
			span.End()

			ended := recorder.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, "booking."+tt.op, ended[0].Name())
			assert.Equal(t, tt.wantCode, ended[0].Status().Code)
			got := attrs(ended[0])
			assert.Equal(t, tt.op, got[SpanAttrOperation])
			assert.Equal(t, tt.status, got[SpanAttrStatus])
			if tt.failure != nil {
				assert.Len(t, ended[0].Events(), 1, "failure recorded as an exception event")
			}
		})
	}
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceCalendar, OperationInsertEvent, "clinic@example.com",
		attribute.String(SpanAttrSlotStart, "2025-02-11T14:00:00-05:00"))
	SetSpanError(span, errors.New("backend error"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "google.calendar.insert_event", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, map[attribute.Key]string{
		SpanAttrGoogleService: "calendar",
		SpanAttrGoogleCall:    "insert_event",
		SpanAttrResourceID:    "clinic@example.com",
		SpanAttrSlotStart:     "2025-02-11T14:00:00-05:00",
	}, attrs(ended[0]))
}

func TestStartToolSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartToolSpan(context.Background(), "booking_check_slot")
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "tool.booking_check_slot", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, "booking_check_slot", attrs(ended[0])[SpanAttrTool])
}

func TestSetSpanError_Nil(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartOperationSpan(context.Background(), "book")
	SetSpanError(span, nil)
	span.End()

	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}

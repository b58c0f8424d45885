package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer and the meter of the service.
const TracerName = "github.com/tristankerr161/retell-booking"

// Span attribute keys.
const (
	SpanAttrOperation = "booking.operation"
	SpanAttrStatus    = "booking.status"
	SpanAttrSlotStart = "booking.slot_start"

	SpanAttrTool = "mcp.tool"

	SpanAttrGoogleService = "google.service"
	SpanAttrGoogleCall    = "google.operation"
	SpanAttrResourceID    = "google.resource_id"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartOperationSpan starts the span of one availability, slot check or
// booking operation, named booking.<op>.
func StartOperationSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "booking."+op,
		trace.WithAttributes(attribute.String(SpanAttrOperation, op)))
}

// SetOperationStatus tags span with the caller-facing status. failure is
// non-nil only when the calendar could not be consulted; rejected and taken
// slots are ordinary outcomes and leave the span OK.
func SetOperationStatus(span trace.Span, status string, failure error) {
	span.SetAttributes(attribute.String(SpanAttrStatus, status))
	if failure != nil {
		SetSpanError(span, failure)
		return
	}
	SetSpanSuccess(span)
}

// StartToolSpan starts the server span of an MCP tool call, named tool.<name>.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(attribute.String(SpanAttrTool, toolName)),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan starts the client span of a call against the calendar
// or spreadsheet resourceID, named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation, resourceID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrGoogleService, service),
		attribute.String(SpanAttrGoogleCall, operation),
		attribute.String(SpanAttrResourceID, resourceID),
	}, attrs...)
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span. A nil err leaves the span untouched.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

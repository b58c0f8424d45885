package common

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. The booking status of the result, when there is one, is
// recorded as the invocation outcome.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		result, err := handler(ctx, request)

		if outcome := Outcome(result); outcome != "" {
			invocation.WithOutcome(outcome)
			span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, outcome))
		}

		switch {
		case err != nil:
			invocation.Complete(false, err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errors.New("tool returned an error result"))
		default:
			invocation.Complete(true, nil)
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), invocation.Duration)
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}

// Outcome returns the booking status carried by a tool result, or "".
func Outcome(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	if resp, ok := result.StructuredContent.(booking.Response); ok {
		return string(resp.Status)
	}
	return ""
}

// ResultFromBooking converts a booking result into a tool result. The
// message is the text content, so a voice agent can read it back as is,
// and the full response is the structured content. Calendar failures are
// flagged as error results.
func ResultFromBooking(res booking.Result) *mcp.CallToolResult {
	resp := res.Response()
	result := mcp.NewToolResultStructured(resp, resp.Message)
	result.IsError = res.Status == booking.StatusError
	return result
}

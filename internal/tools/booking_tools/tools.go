package booking_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/server"
	"github.com/tristankerr161/retell-booking/internal/tools/common"
)

// Tool names.
const (
	ToolFindSlots       = "booking_find_slots"
	ToolCheckSlot       = "booking_check_slot"
	ToolBookAppointment = "booking_book_appointment"
)

const instantFormat = "ISO 8601, e.g. '2025-02-11T14:00:00-05:00'. Without an offset the business time zone is assumed."

// RegisterBookingTools registers the booking tools with the MCP server.
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil || sc.Service() == nil {
		return fmt.Errorf("booking service is required")
	}
	svc := sc.Service()
	cfg := svc.Config()

	findSlotsTool := mcp.NewTool(ToolFindSlots,
		mcp.WithDescription(fmt.Sprintf(
			"List open appointment slots of %d minutes within the next %d days. Without a preferred time the earliest slots are returned.",
			cfg.DurationMinutes, cfg.SearchDays)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("preferred_instant",
			mcp.Description("Time the caller would like; slots closest to it are returned. "+instantFormat),
		),
		mcp.WithNumber("count",
			mcp.Description(fmt.Sprintf("Number of slots to return (default: %d, max: %d)",
				booking.DefaultAvailabilityCount, booking.MaxAvailabilityCount)),
		),
	)
	s.AddTool(findSlotsTool, common.InstrumentedToolHandler(ToolFindSlots, sc, runWith(svc.HandleAvailability)))

	checkSlotTool := mcp.NewTool(ToolCheckSlot,
		mcp.WithDescription("Check whether an appointment can be booked at a given start time, without booking it. Offers alternatives when it cannot."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("requested_instant",
			mcp.Required(),
			mcp.Description("Requested start time. "+instantFormat),
		),
	)
	s.AddTool(checkSlotTool, common.InstrumentedToolHandler(ToolCheckSlot, sc, runWith(svc.HandleCheckSlot)))

	bookTool := mcp.NewTool(ToolBookAppointment,
		mcp.WithDescription("Book an appointment for the caller. The slot is re-checked first; when it is taken or not allowed, alternatives are offered instead."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("full_name",
			mcp.Required(),
			mcp.Description("Caller's full name"),
		),
		mcp.WithString("email",
			mcp.Description("Caller's email address. Email or phone is required."),
		),
		mcp.WithString("phone",
			mcp.Description("Caller's phone number. Email or phone is required."),
		),
		mcp.WithString("business_type",
			mcp.Description("Kind of business the caller runs"),
		),
		mcp.WithString("notes",
			mcp.Description("Anything else the caller wants noted"),
		),
		mcp.WithString("requested_instant",
			mcp.Required(),
			mcp.Description("Requested start time. "+instantFormat),
		),
	)
	s.AddTool(bookTool, common.InstrumentedToolHandler(ToolBookAppointment, sc, runWith(svc.HandleBook)))

	return nil
}

type operation func(ctx context.Context, body []byte) (booking.Result, error)

// runWith adapts a payload operation to a tool handler. Arguments are
// re-encoded as JSON and decoded like an HTTP body.
func runWith(op operation) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res, err := op(ctx, body)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return common.ResultFromBooking(res), nil
	}
}

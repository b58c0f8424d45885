package booking

import (
	"time"

	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

// Status is the caller-facing outcome of an operation.
type Status string

// Statuses returned to callers.
const (
	StatusConfirmed      Status = "confirmed"
	StatusAvailable      Status = "available"
	StatusUnavailable    Status = "unavailable"
	StatusNoSlots        Status = "no_slots"
	StatusInvalidTime    Status = "invalid_time"
	StatusInvalidRequest Status = "invalid_request"
	StatusError          Status = "error"
)

// Result is what every Service operation returns. Only the fields relevant to
// Status are set.
type Result struct {
	Status  Status
	Message string

	// Slot is the requested or booked slot for confirmed, available and
	// unavailable results.
	Slot *scheduling.Slot

	// EventID identifies the reservation when Status is confirmed.
	EventID string

	// Alternatives are slots offered instead of, or in the absence of, a
	// requested one. Availability lookups return their slots here.
	Alternatives []scheduling.Slot

	// Reason is set for invalid_time results.
	Reason scheduling.Reason

	// RecordError is set when the booking succeeded but the record sink
	// failed. The booking stands.
	RecordError error

	// Err is the internal cause of an error result. It is never shown to
	// callers.
	Err error
}

// SlotView is the wire form of a slot.
type SlotView struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Response is the JSON body returned by the HTTP API and MCP tools.
type Response struct {
	Status       Status     `json:"status"`
	Message      string     `json:"message"`
	Slot         *SlotView  `json:"slot,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	Alternatives []SlotView `json:"alternatives"`
}

// NewSlotView renders s for the wire.
func NewSlotView(s scheduling.Slot) SlotView {
	return SlotView{
		Start: s.Start.Format(time.RFC3339),
		End:   s.End.Format(time.RFC3339),
		Label: scheduling.FormatSlotLabel(s),
	}
}

// Response converts the result to its wire form.
func (r Result) Response() Response {
	resp := Response{
		Status:       r.Status,
		Message:      r.Message,
		EventID:      r.EventID,
		Reason:       string(r.Reason),
		Alternatives: make([]SlotView, 0, len(r.Alternatives)),
	}
	if r.Slot != nil {
		v := NewSlotView(*r.Slot)
		resp.Slot = &v
	}
	for _, s := range r.Alternatives {
		resp.Alternatives = append(resp.Alternatives, NewSlotView(s))
	}
	return resp
}

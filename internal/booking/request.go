package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// Request is a booking request after decoding. Contact fields are free text
// except Email, which must parse as an address when present.
type Request struct {
	FullName     string
	Email        string
	Phone        string
	BusinessType string
	Notes        string

	// RequestedInstant is the caller supplied start, RFC 3339 or a local
	// timestamp without offset.
	RequestedInstant string
}

// Metadata returns the contact details attached to a reservation.
func (r Request) Metadata() Metadata {
	return Metadata{
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		BusinessType: r.BusinessType,
		Notes:        r.Notes,
	}
}

// Validate checks the contact fields. The requested instant, including a
// missing one, is left to the scheduling rules.
func (r Request) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return &FieldError{Field: fieldFullName, Reason: "is required"}
	}
	if r.Email == "" && r.Phone == "" {
		return &FieldError{Field: fieldEmail, Reason: "email or phone is required"}
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return &FieldError{Field: fieldEmail, Reason: "is not a valid address"}
		}
	}
	if r.Phone != "" && countDigits(r.Phone) < 7 {
		return &FieldError{Field: fieldPhone, Reason: "is too short"}
	}
	return nil
}

// AvailabilityQuery asks for open slots, optionally near a preferred instant.
type AvailabilityQuery struct {
	Preferred string
	Count     int
}

// Canonical field names.
const (
	fieldFullName         = "full_name"
	fieldEmail            = "email"
	fieldPhone            = "phone"
	fieldBusinessType     = "business_type"
	fieldNotes            = "notes"
	fieldRequestedInstant = "requested_instant"
	fieldPreferredInstant = "preferred_instant"
	fieldCount            = "count"
)

// fieldAliases maps each canonical field to the keys callers send it under.
// Voice agents name tool arguments loosely, so all spellings are resolved
// here and nowhere else.
var fieldAliases = map[string][]string{
	fieldFullName:         {"full_name", "fullName", "name", "customer_name"},
	fieldEmail:            {"email", "email_address", "emailAddress"},
	fieldPhone:            {"phone", "phone_number", "phoneNumber"},
	fieldBusinessType:     {"business_type", "businessType", "business"},
	fieldNotes:            {"notes", "note", "comments"},
	fieldRequestedInstant: {"requested_instant", "requestedInstant", "requested_time", "start_time", "datetime", "time"},
	fieldPreferredInstant: {"preferred_instant", "preferredInstant", "preferred_time", "around"},
	fieldCount:            {"count", "limit", "n"},
}

// payload is a decoded JSON object keyed by the caller's field names.
type payload map[string]json.RawMessage

// decodePayload reads a JSON object, unwrapping the {"args": {...}} envelope
// voice agents send tool calls in. An empty body decodes to an empty payload.
func decodePayload(body []byte) (payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return payload{}, nil
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &BodyError{Err: err}
	}
	if raw, ok := p["args"]; ok {
		var inner payload
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, &BodyError{Err: fmt.Errorf("args: %w", err)}
		}
		return inner, nil
	}
	return p, nil
}

// str returns the trimmed string value of field, accepting numbers as text.
func (p payload) str(field string) (string, error) {
	for _, key := range fieldAliases[field] {
		raw, ok := p[key]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s), nil
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), nil
		}
		return "", &FieldError{Field: field, Reason: "must be a string"}
	}
	return "", nil
}

// integer returns the integer value of field, or 0 when absent.
func (p payload) integer(field string) (int, error) {
	s, err := p.str(field)
	if err != nil || s == "" {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be an integer"}
	}
	return n, nil
}

// DecodeRequest decodes and validates a booking request body.
func DecodeRequest(body []byte) (Request, error) {
	p, err := decodePayload(body)
	if err != nil {
		return Request{}, err
	}

	var req Request
	targets := []struct {
		field string
		dst   *string
	}{
		{fieldFullName, &req.FullName},
		{fieldEmail, &req.Email},
		{fieldPhone, &req.Phone},
		{fieldBusinessType, &req.BusinessType},
		{fieldNotes, &req.Notes},
		{fieldRequestedInstant, &req.RequestedInstant},
	}
	for _, t := range targets {
		if *t.dst, err = p.str(t.field); err != nil {
			return Request{}, err
		}
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// DecodeSlotQuery decodes the requested instant from a slot check body. A
// missing instant decodes to "" and is rejected as malformed_time later.
func DecodeSlotQuery(body []byte) (string, error) {
	p, err := decodePayload(body)
	if err != nil {
		return "", err
	}
	return p.str(fieldRequestedInstant)
}

// DecodeAvailabilityQuery decodes an availability body. Every field is optional.
func DecodeAvailabilityQuery(body []byte) (AvailabilityQuery, error) {
	p, err := decodePayload(body)
	if err != nil {
		return AvailabilityQuery{}, err
	}

	var q AvailabilityQuery
	if q.Preferred, err = p.str(fieldPreferredInstant); err != nil {
		return AvailabilityQuery{}, err
	}
	if q.Count, err = p.integer(fieldCount); err != nil {
		return AvailabilityQuery{}, err
	}
	if q.Count < 0 {
		return AvailabilityQuery{}, &FieldError{Field: fieldCount, Reason: "must not be negative"}
	}
	return q, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

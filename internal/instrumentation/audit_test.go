package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("booking_book_appointment").WithOutcome("confirmed").Complete(true, nil)

	if ti.Status() != StatusSuccess {
		t.Errorf("expected success status, got %q", ti.Status())
	}
	if ti.Duration < 0 {
		t.Error("expected non-negative duration")
	}

	failed := NewToolInvocation("booking_book_appointment").Complete(false, errors.New("boom"))
	if failed.Status() != StatusError || failed.Error != "boom" {
		t.Errorf("unexpected failed invocation %+v", failed)
	}
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	withRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "booking_find_slots")
	defer span.End()

	ti := NewToolInvocation("booking_find_slots").WithSpanContext(ctx)
	if ti.TraceID == "" || ti.SpanID == "" {
		t.Error("expected trace context to be captured")
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	audit := NewAuditLogger(logger, true)

	audit.LogToolInvocation(NewToolInvocation("booking_check_slot").WithOutcome("available").Complete(true, nil))
	audit.LogToolInvocation(NewToolInvocation("booking_check_slot").Complete(false, errors.New("calendar down")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first["msg"] != "tool_executed" || first["outcome"] != "available" {
		t.Errorf("unexpected first entry %v", first)
	}
	if second["msg"] != "tool_failed" || second["level"] != "WARN" || second["error"] != "calendar down" {
		t.Errorf("unexpected second entry %v", second)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), false)
	audit.LogToolInvocation(NewToolInvocation("booking_find_slots").Complete(true, nil))

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	var nilAudit *AuditLogger
	nilAudit.LogToolInvocation(NewToolInvocation("booking_find_slots"))
}

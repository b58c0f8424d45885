package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
)

// DefaultRange is the append target when none is configured.
const DefaultRange = "Bookings!A:I"

// APIRecorder records Google API call metrics.
type APIRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Sink appends booking records to a spreadsheet.
type Sink struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
	recorder      APIRecorder
}

var _ booking.RecordSink = (*Sink)(nil)

// NewSink creates a Sink writing to writeRange of the given spreadsheet.
// recorder may be nil.
func NewSink(ctx context.Context, spreadsheetID, writeRange string, recorder APIRecorder, clientOpts ...option.ClientOption) (*Sink, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if writeRange == "" {
		writeRange = DefaultRange
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Sink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		recorder:      recorder,
	}, nil
}

// Append writes rec as a new row below the last row of the range.
func (s *Sink) Append(ctx context.Context, rec booking.Record) (err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationAppendRow, s.spreadsheetID)
	defer span.End()

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		if s.recorder != nil {
			s.recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceSheets, instrumentation.OperationAppendRow, status, time.Since(start))
		}
	}()

	body := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{Row(rec)},
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.writeRange, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append booking row: %w", err)
	}
	return nil
}

// Ping checks that the spreadsheet is reachable with the configured credentials.
func (s *Sink) Ping(ctx context.Context) error {
	if _, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("spreadsheet %q not reachable: %w", s.spreadsheetID, err)
	}
	return nil
}

// Row renders rec in column order.
func Row(rec booking.Record) []interface{} {
	return []interface{}{
		rec.BookedAt.UTC().Format(time.RFC3339),
		rec.FullName,
		rec.Email,
		rec.Phone,
		rec.BusinessType,
		rec.Slot.Start.Format(time.RFC3339),
		rec.Slot.End.Format(time.RFC3339),
		rec.EventID,
		rec.Notes,
	}
}

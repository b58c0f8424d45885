package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

// APIRecorder records Google API call metrics.
type APIRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	// CalendarID is the calendar queried and written to (default "primary").
	CalendarID string

	// TimeZone is the IANA zone events are created in.
	TimeZone string

	// SummaryPrefix starts every event title.
	SummaryPrefix string

	// Recorder receives one measurement per API call. Optional.
	Recorder APIRecorder
}

// Client wraps the Google Calendar service for a single calendar.
type Client struct {
	svc           *calendar.Service
	calendarID    string
	timeZone      string
	summaryPrefix string
	recorder      APIRecorder
	newEventID    func() string
}

var _ booking.CalendarProvider = (*Client)(nil)

// NewClient creates a Calendar client. clientOpts carry credentials, see
// package google.
func NewClient(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.TimeZone == "" {
		opts.TimeZone = "UTC"
	}

	return &Client{
		svc:           svc,
		calendarID:    opts.CalendarID,
		timeZone:      opts.TimeZone,
		summaryPrefix: opts.SummaryPrefix,
		recorder:      opts.Recorder,
		newEventID:    newEventID,
	}, nil
}

// CalendarID returns the calendar this client works on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// QueryBusy returns the busy intervals of the calendar within [timeMin, timeMax).
// Errors the API reports for the calendar itself are returned rather than
// treated as an empty calendar.
func (c *Client) QueryBusy(ctx context.Context, timeMin, timeMax time.Time) (busy []scheduling.Interval, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationFreeBusy, c.calendarID)
	defer span.End()
	defer c.observe(ctx, instrumentation.OperationFreeBusy, time.Now(), &err)
	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
	}()

	query := &calendar.FreeBusyRequest{
		TimeMin:  timeMin.Format(time.RFC3339),
		TimeMax:  timeMax.Format(time.RFC3339),
		TimeZone: c.timeZone,
		Items:    []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %q missing from freebusy response", c.calendarID)
	}
	if len(cal.Errors) > 0 {
		reasons := make([]string, 0, len(cal.Errors))
		for _, e := range cal.Errors {
			reasons = append(reasons, e.Reason)
		}
		return nil, fmt.Errorf("freebusy for calendar %q failed: %s", c.calendarID, strings.Join(reasons, ", "))
	}

	busy = make([]scheduling.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", period.End, err)
		}
		busy = append(busy, scheduling.Interval{Start: start, End: end})
	}

	span.SetAttributes(attribute.Int("calendar.busy_count", len(busy)))
	return busy, nil
}

// Reserve inserts an event covering slot and returns its ID.
func (c *Client) Reserve(ctx context.Context, slot scheduling.Slot, meta booking.Metadata) (id string, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationInsertEvent, c.calendarID,
		attribute.String(instrumentation.SpanAttrSlotStart, slot.Start.Format(time.RFC3339)))
	defer span.End()
	defer c.observe(ctx, instrumentation.OperationInsertEvent, time.Now(), &err)
	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
	}()

	event := c.buildEvent(c.newEventID(), slot, meta)

	created, err := c.svc.Events.Insert(c.calendarID, event).SendUpdates("none").Context(ctx).Do()
	if err != nil {
		// Each Reserve call picks a fresh ID, so 409 only happens when the
		// API library resent this insert after its first attempt was applied.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			return event.Id, nil
		}
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	return created.Id, nil
}

// Ping checks that the calendar is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Calendars.Get(c.calendarID).Fields("id").Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar %q not reachable: %w", c.calendarID, err)
	}
	return nil
}

func (c *Client) observe(ctx context.Context, operation string, start time.Time, err *error) {
	if c.recorder == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if *err != nil {
		status = instrumentation.StatusError
	}
	c.recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
}

// newEventID returns an identifier valid for Calendar events: base32hex
// characters, 5 to 1024 long. Hex digits are a subset of base32hex.
func newEventID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

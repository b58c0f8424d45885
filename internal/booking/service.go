package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/logging"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

const (
	// DefaultAlternatives is how many slots are offered when a request
	// cannot be honored.
	DefaultAlternatives = 2

	// DefaultAvailabilityCount is how many slots an availability lookup
	// returns when the caller does not ask for a number.
	DefaultAvailabilityCount = 3

	// MaxAvailabilityCount caps what a caller may ask for.
	MaxAvailabilityCount = 10

	// DefaultTimeout bounds each external call.
	DefaultTimeout = 10 * time.Second
)

// Operation names used for logging, spans and outcome metrics.
const (
	OpAvailability = "availability"
	OpCheckSlot    = "check_slot"
	OpBook         = "book"
)

// Metadata is the contact information attached to a reservation.
type Metadata struct {
	FullName     string
	Email        string
	Phone        string
	BusinessType string
	Notes        string
}

// Record is one confirmed booking as written to the record sink.
type Record struct {
	BookedAt time.Time
	Slot     scheduling.Slot
	EventID  string
	Metadata
}

// CalendarProvider is the calendar of record.
type CalendarProvider interface {
	// QueryBusy returns the busy intervals overlapping [timeMin, timeMax).
	QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]scheduling.Interval, error)

	// Reserve creates an event for slot and returns its identifier.
	Reserve(ctx context.Context, slot scheduling.Slot, meta Metadata) (string, error)
}

// RecordSink receives a copy of every confirmed booking.
type RecordSink interface {
	Append(ctx context.Context, rec Record) error
}

// OutcomeRecorder counts operation outcomes.
type OutcomeRecorder interface {
	RecordBookingOutcome(ctx context.Context, operation, status string)
}

// Service answers availability questions and books appointments.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	cfg      scheduling.Config
	calendar CalendarProvider
	sink     RecordSink
	recorder OutcomeRecorder
	logger   *slog.Logger
	now      func() time.Time
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRecordSink sets the sink confirmed bookings are appended to.
func WithRecordSink(sink RecordSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithOutcomeRecorder sets the recorder for outcome metrics.
func WithOutcomeRecorder(r OutcomeRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout sets the bound applied to each external call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService returns a Service applying cfg against calendar.
func NewService(cfg scheduling.Config, calendar CalendarProvider, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduling config: %w", err)
	}
	if calendar == nil {
		return nil, fmt.Errorf("calendar provider is required")
	}

	s := &Service{
		cfg:      cfg,
		calendar: calendar,
		logger:   slog.Default(),
		now:      time.Now,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	return s, nil
}

// Config returns the scheduling rules the service applies.
func (s *Service) Config() scheduling.Config {
	return s.cfg
}

// Availability returns up to n open slots across the horizon. With a
// preferred instant the slots nearest to it are chosen, otherwise the
// earliest ones. n <= 0 selects DefaultAvailabilityCount.
func (s *Service) Availability(ctx context.Context, preferred *time.Time, n int) Result {
	ctx, span := instrumentation.StartOperationSpan(ctx, OpAvailability)
	defer span.End()

	switch {
	case n <= 0:
		n = DefaultAvailabilityCount
	case n > MaxAvailabilityCount:
		n = MaxAvailabilityCount
	}

	free, err := s.freeSlots(ctx, s.now())
	if err != nil {
		return s.finish(ctx, span, OpAvailability, s.failed(err))
	}

	var picked []scheduling.Slot
	if preferred != nil {
		picked = scheduling.NearestN(free, *preferred, n)
	} else {
		picked = scheduling.FirstN(free, n)
	}
	if len(picked) == 0 {
		return s.finish(ctx, span, OpAvailability, Result{
			Status:       StatusNoSlots,
			Message:      fmt.Sprintf("There are no open times in the next %d days.", s.cfg.SearchDays),
			Alternatives: []scheduling.Slot{},
		})
	}

	return s.finish(ctx, span, OpAvailability, Result{
		Status:       StatusAvailable,
		Message:      "Open times: " + joinLabels(picked) + ".",
		Alternatives: picked,
	})
}

// CheckSlot reports whether the slot starting at raw can be booked, without
// booking it.
func (s *Service) CheckSlot(ctx context.Context, raw string) Result {
	ctx, span := instrumentation.StartOperationSpan(ctx, OpCheckSlot)
	defer span.End()

	now := s.now()
	slot, err := s.cfg.ValidateRequest(raw, now)
	if err != nil {
		return s.finish(ctx, span, OpCheckSlot, s.invalid(ctx, now, err))
	}

	free, err := s.isFree(ctx, slot)
	if err != nil {
		return s.finish(ctx, span, OpCheckSlot, s.failed(err))
	}
	if !free {
		return s.finish(ctx, span, OpCheckSlot, s.unavailable(ctx, now, slot))
	}

	return s.finish(ctx, span, OpCheckSlot, Result{
		Status:       StatusAvailable,
		Message:      scheduling.FormatSlotLabel(slot) + " is open.",
		Slot:         &slot,
		Alternatives: []scheduling.Slot{},
	})
}

// Book validates req, re-checks the exact slot, reserves it and appends a
// record. The reservation is the only write of record; a failing sink is
// reported on the result but never undoes the booking.
func (s *Service) Book(ctx context.Context, req Request) Result {
	ctx, span := instrumentation.StartOperationSpan(ctx, OpBook)
	defer span.End()

	logger := logging.WithOperation(s.logger, OpBook).With(
		logging.UserHash(req.Email),
		logging.PhoneHash(req.Phone),
	)

	now := s.now()
	if err := req.Validate(); err != nil {
		logger.Info("booking request incomplete", logging.Err(err))
		return s.finish(ctx, span, OpBook, s.invalidRequest(ctx, now, err))
	}

	slot, err := s.cfg.ValidateRequest(req.RequestedInstant, now)
	if err != nil {
		logger.Info("booking request rejected", logging.Err(err))
		return s.finish(ctx, span, OpBook, s.invalid(ctx, now, err))
	}

	free, err := s.isFree(ctx, slot)
	if err != nil {
		return s.finish(ctx, span, OpBook, s.failed(err))
	}
	if !free {
		logger.Info("requested slot is busy", logging.SlotAttr(slot))
		return s.finish(ctx, span, OpBook, s.unavailable(ctx, now, slot))
	}

	eventID, err := s.reserve(ctx, slot, req.Metadata())
	if err != nil {
		return s.finish(ctx, span, OpBook, s.failed(err))
	}
	logger.Info("appointment reserved", logging.SlotAttr(slot), slog.String("event_id", eventID))

	res := Result{
		Status:       StatusConfirmed,
		Message:      "You're booked for " + scheduling.FormatSlotLabel(slot) + ".",
		Slot:         &slot,
		EventID:      eventID,
		Alternatives: []scheduling.Slot{},
	}

	if s.sink != nil {
		rec := Record{BookedAt: now.In(s.cfg.Location), Slot: slot, EventID: eventID, Metadata: req.Metadata()}
		if err := s.appendRecord(ctx, rec); err != nil {
			logger.Warn("failed to append booking record", slog.String("event_id", eventID), logging.Err(err))
			res.RecordError = err
		}
	}

	return s.finish(ctx, span, OpBook, res)
}

// freeSlots returns every free candidate across the horizon.
func (s *Service) freeSlots(ctx context.Context, now time.Time) ([]scheduling.Slot, error) {
	candidates := s.cfg.Candidates(now)
	timeMin, timeMax, ok := scheduling.Window(candidates)
	if !ok {
		return nil, nil
	}
	busy, err := s.queryBusy(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	return scheduling.FilterFree(candidates, busy), nil
}

// isFree queries exactly the slot's window.
func (s *Service) isFree(ctx context.Context, slot scheduling.Slot) (bool, error) {
	busy, err := s.queryBusy(ctx, slot.Start, slot.End)
	if err != nil {
		return false, err
	}
	return s.cfg.IsExactlyFree(slot.Start, busy), nil
}

func (s *Service) queryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]scheduling.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	busy, err := s.calendar.QueryBusy(ctx, timeMin, timeMax)
	return busy, wrapProvider("calendar.query_busy", err)
}

func (s *Service) reserve(ctx context.Context, slot scheduling.Slot, meta Metadata) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	id, err := s.calendar.Reserve(ctx, slot, meta)
	return id, wrapProvider("calendar.reserve", err)
}

func (s *Service) appendRecord(ctx context.Context, rec Record) error {
	// The caller may already be gone; the record still belongs to a
	// booking that exists.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	return wrapProvider("sink.append", s.sink.Append(ctx, rec))
}

// invalid builds an invalid_time result offering the earliest free slots.
func (s *Service) invalid(ctx context.Context, now time.Time, err error) Result {
	res := Result{Status: StatusInvalidTime, Err: err}

	var rej *scheduling.Rejection
	if errors.As(err, &rej) {
		res.Reason = rej.Reason
	}

	res.Alternatives = s.earliestAlternatives(ctx, now)
	res.Message = rejectionMessage(res.Reason, s.cfg) + offerSuffix(res.Alternatives)
	return res
}

// invalidRequest builds an invalid_request result for missing or malformed
// fields, offering the earliest free slots.
func (s *Service) invalidRequest(ctx context.Context, now time.Time, err error) Result {
	alts := s.earliestAlternatives(ctx, now)
	return Result{
		Status:       StatusInvalidRequest,
		Message:      "Some details are missing or malformed: " + err.Error() + "." + offerSuffix(alts),
		Alternatives: alts,
		Err:          err,
	}
}

// earliestAlternatives returns the first free slots of the horizon. A
// failing lookup degrades to none.
func (s *Service) earliestAlternatives(ctx context.Context, now time.Time) []scheduling.Slot {
	free, err := s.freeSlots(ctx, now)
	if err != nil {
		s.logger.Warn("alternative lookup failed", logging.Err(err))
		return []scheduling.Slot{}
	}
	return scheduling.FirstN(free, DefaultAlternatives)
}

// unavailable builds an unavailable result offering the free slots nearest
// to the requested one.
func (s *Service) unavailable(ctx context.Context, now time.Time, slot scheduling.Slot) Result {
	res := Result{Status: StatusUnavailable, Slot: &slot, Alternatives: []scheduling.Slot{}}

	free, err := s.freeSlots(ctx, now)
	if err != nil {
		s.logger.Warn("alternative lookup failed", logging.Err(err))
	} else {
		free = scheduling.ExcludeStart(free, slot.Start)
		res.Alternatives = scheduling.NearestN(free, slot.Start, DefaultAlternatives)
	}

	res.Message = "That time is taken." + offerSuffix(res.Alternatives)
	return res
}

func (s *Service) failed(err error) Result {
	msg := "We couldn't reach the calendar right now. Please try again shortly."
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Timeout() {
		msg = "The calendar is taking too long to respond. Please try again shortly."
	}
	s.logger.Error("calendar provider failed", logging.Err(err))
	return Result{Status: StatusError, Message: msg, Alternatives: []scheduling.Slot{}, Err: err}
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, res Result) Result {
	var failure error
	if res.Status == StatusError {
		failure = res.Err
	}
	instrumentation.SetOperationStatus(span, string(res.Status), failure)
	if s.recorder != nil {
		s.recorder.RecordBookingOutcome(ctx, op, string(res.Status))
	}
	return res
}

func rejectionMessage(reason scheduling.Reason, cfg scheduling.Config) string {
	switch reason {
	case scheduling.ReasonMalformedTime:
		return "I couldn't understand that time."
	case scheduling.ReasonTooSoonOrPast:
		return fmt.Sprintf("That time is too soon; appointments need at least %d minutes' notice.", cfg.LeadMinutes)
	case scheduling.ReasonBeyondHorizon:
		return fmt.Sprintf("We only book up to %d days ahead.", cfg.SearchDays)
	case scheduling.ReasonNonBusinessDay:
		return "We're only open Monday through Friday."
	case scheduling.ReasonOutsideBusinessHours:
		return fmt.Sprintf("That's outside our hours of %s to %s.", hourLabel(cfg.BusinessStartHour), hourLabel(cfg.BusinessEndHour))
	case scheduling.ReasonBadGranularity:
		return fmt.Sprintf("Appointments start every %d minutes.", cfg.StepMinutes)
	default:
		return "That time can't be booked."
	}
}

func offerSuffix(alts []scheduling.Slot) string {
	if len(alts) == 0 {
		return " No nearby times are open."
	}
	return " How about " + joinLabels(alts) + "?"
}

func joinLabels(slots []scheduling.Slot) string {
	labels := scheduling.FormatSlotLabels(slots)
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " or " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", or " + labels[len(labels)-1]
	}
}

func hourLabel(h int) string {
	return time.Date(2000, 1, 1, h%24, 0, 0, 0, time.UTC).Format("3 PM")
}

package booking

import (
	"context"
	"errors"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/scheduling"
)

// The Handle methods decode a raw payload and run the operation. Only a body
// that is not a JSON object yields an error (a *BodyError); problems with
// individual fields come back as an invalid_request result.

// HandleAvailability decodes an availability query and answers it.
func (s *Service) HandleAvailability(ctx context.Context, body []byte) (Result, error) {
	q, err := DecodeAvailabilityQuery(body)
	if err != nil {
		return s.decodeFailed(ctx, OpAvailability, err)
	}
	return s.FindSlots(ctx, q), nil
}

// HandleCheckSlot decodes a slot check and answers it.
func (s *Service) HandleCheckSlot(ctx context.Context, body []byte) (Result, error) {
	raw, err := DecodeSlotQuery(body)
	if err != nil {
		return s.decodeFailed(ctx, OpCheckSlot, err)
	}
	return s.CheckSlot(ctx, raw), nil
}

// HandleBook decodes a booking request and books it.
func (s *Service) HandleBook(ctx context.Context, body []byte) (Result, error) {
	req, err := DecodeRequest(body)
	if err != nil {
		return s.decodeFailed(ctx, OpBook, err)
	}
	return s.Book(ctx, req), nil
}

// FindSlots answers an availability query. An unreadable preferred instant
// is an invalid_time result.
func (s *Service) FindSlots(ctx context.Context, q AvailabilityQuery) Result {
	if q.Preferred == "" {
		return s.Availability(ctx, nil, q.Count)
	}

	preferred, err := scheduling.ParseInstant(q.Preferred, s.cfg.Location)
	if err != nil {
		ctx, span := instrumentation.StartOperationSpan(ctx, OpAvailability)
		defer span.End()
		rej := &scheduling.Rejection{Reason: scheduling.ReasonMalformedTime, Detail: err.Error()}
		return s.finish(ctx, span, OpAvailability, s.invalid(ctx, s.now(), rej))
	}
	return s.Availability(ctx, &preferred, q.Count)
}

func (s *Service) decodeFailed(ctx context.Context, op string, err error) (Result, error) {
	var bodyErr *BodyError
	if errors.As(err, &bodyErr) {
		return Result{}, err
	}

	ctx, span := instrumentation.StartOperationSpan(ctx, op)
	defer span.End()
	return s.finish(ctx, span, op, s.invalidRequest(ctx, s.now(), err)), nil
}

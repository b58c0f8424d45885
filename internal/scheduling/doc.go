// Package scheduling computes bookable appointment slots.
//
// Everything in this package is pure: functions take the current instant and
// the busy intervals reported by a calendar as arguments and never perform
// I/O. A Config describes the business rules (lead time, slot length,
// granularity, horizon, business hours and timezone) and is the only input
// that varies between deployments.
//
// The typical flow is:
//
//	cfg := scheduling.Config{...}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	candidates := cfg.Candidates(now)
//	free := scheduling.FilterFree(candidates, busy)
//	offer := scheduling.NearestN(free, preferred, 2)
//
// Caller supplied instants are checked with Config.ValidateRequest, which
// rejects malformed, past, weekend, out-of-hours and misaligned values with a
// *Rejection carrying a machine readable Reason.
//
// ValidateRequest also rejects instants at or after HorizonEnd with
// ReasonBeyondHorizon, checked right after the lead time. Such a slot may be
// a perfectly good weekday slot, but it lies outside the window whose busy
// intervals are ever fetched, so it is neither offered nor booked.
package scheduling

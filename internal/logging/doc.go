// Package logging provides structured logging utilities for the booking service.
//
// This package centralizes logging patterns so that every component logs with
// the same attribute names through the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once and install it:
//
//	logger, err := logging.New(os.Stderr, "info", "json")
//	slog.SetDefault(logger)
//
// Attach the operation and hashed contact details:
//
//	logger := logging.WithOperation(slog.Default(), "book")
//	logger.Info("appointment reserved",
//	    logging.UserHash(req.Email),
//	    logging.SlotAttr(slot))
//
// # Security Considerations
//
// Caller contact details are personal data. Emails and phone numbers are
// hashed before they reach a log line; names and notes are never logged.
package logging

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/calendar"
	"github.com/tristankerr161/retell-booking/internal/config"
	"github.com/tristankerr161/retell-booking/internal/google"
	"github.com/tristankerr161/retell-booking/internal/instrumentation"
	"github.com/tristankerr161/retell-booking/internal/server"
	"github.com/tristankerr161/retell-booking/internal/sheets"
)

// app holds the booking service and the external dependencies behind it.
type app struct {
	service *booking.Service

	// deps are the dependencies reported by the detailed health endpoint.
	deps map[string]server.Pinger
}

// newApp connects to Google Calendar, and to Google Sheets when a sheet is
// configured, and builds the booking service on top. metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*app, error) {
	clientOpts, err := google.ClientOptions(ctx, google.CredentialsSource{
		JSON: cfg.Google.CredentialsJSON,
		File: cfg.Google.CredentialsFile,
	})
	if err != nil {
		return nil, err
	}

	calOpts := calendar.Options{
		CalendarID:    cfg.Google.CalendarID,
		TimeZone:      cfg.Scheduling.TimeZone,
		SummaryPrefix: cfg.EventSummaryPrefix,
	}
	if metrics != nil {
		calOpts.Recorder = metrics
	}
	cal, err := calendar.NewClient(ctx, calOpts, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	a := &app{deps: map[string]server.Pinger{"calendar": cal}}

	opts := []booking.Option{
		booking.WithLogger(logger),
		booking.WithTimeout(cfg.ProviderTimeout),
	}
	if metrics != nil {
		opts = append(opts, booking.WithOutcomeRecorder(metrics))
	}

	if cfg.SheetEnabled() {
		var recorder sheets.APIRecorder
		if metrics != nil {
			recorder = metrics
		}
		sink, err := sheets.NewSink(ctx, cfg.Google.SheetID, cfg.Google.SheetRange, recorder, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets sink: %w", err)
		}
		opts = append(opts, booking.WithRecordSink(sink))
		a.deps["sheets"] = sink
	} else {
		logger.Info("GOOGLE_SHEET_ID not set, confirmed bookings are not copied to a sheet")
	}

	a.service, err = booking.NewService(cfg.Scheduling, cal, opts...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

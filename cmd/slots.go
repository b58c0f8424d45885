package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tristankerr161/retell-booking/internal/booking"
	"github.com/tristankerr161/retell-booking/internal/config"
	"github.com/tristankerr161/retell-booking/internal/logging"
)

func newSlotsCmd() *cobra.Command {
	var (
		preferred string
		count     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List open appointment slots",
		Long: `List open appointment slots on the configured calendar.

Without --preferred the earliest slots are listed; with it, the slots nearest
to the preferred time. Times without an offset are read in the business time
zone.`,
		Example: `  retell-booking slots
  retell-booking slots --preferred 2025-02-11T14:00 --count 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			res := svc.FindSlots(cmd.Context(), booking.AvailabilityQuery{
				Preferred: preferred,
				Count:     count,
			})
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}

	cmd.Flags().StringVar(&preferred, "preferred", "", "Preferred start time (ISO 8601)")
	cmd.Flags().IntVar(&count, "count", booking.DefaultAvailabilityCount, "Number of slots to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full JSON response")

	return cmd
}

// loadService builds the booking service for one-shot commands. Logs go to
// stderr so stdout stays readable.
func loadService(ctx context.Context) (*booking.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return a.service, nil
}

// printResult writes res for a person, or as the API response with asJSON.
// An error result is returned as an error so the process exits non-zero.
func printResult(w io.Writer, res booking.Result, asJSON bool) error {
	resp := res.Response()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, resp.Message)
		if resp.EventID != "" {
			fmt.Fprintf(w, "Event: %s\n", resp.EventID)
		}
		for _, alt := range resp.Alternatives {
			fmt.Fprintf(w, "  %s  (%s)\n", alt.Label, alt.Start)
		}
	}

	if res.Status == booking.StatusError {
		if res.Err != nil {
			return fmt.Errorf("%s: %w", resp.Message, res.Err)
		}
		return errors.New(resp.Message)
	}
	return nil
}

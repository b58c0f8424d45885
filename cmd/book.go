package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tristankerr161/retell-booking/internal/booking"
)

func newBookCmd() *cobra.Command {
	var (
		req    booking.Request
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		Long: `Book an appointment on the configured calendar.

The slot goes through the same checks as a voice agent booking. When it is
not available the nearest open slots are listed instead.`,
		Example: `  retell-booking book --name "Ada Lovelace" --email ada@example.com --time 2025-02-11T14:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), svc.Book(cmd.Context(), req), asJSON)
		},
	}

	cmd.Flags().StringVar(&req.FullName, "name", "", "Caller's full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Caller's email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Caller's phone number")
	cmd.Flags().StringVar(&req.BusinessType, "business-type", "", "Kind of business")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes for the appointment")
	cmd.Flags().StringVar(&req.RequestedInstant, "time", "", "Requested start time (ISO 8601)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full JSON response")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

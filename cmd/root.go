package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the retell-booking application
var rootCmd = &cobra.Command{
	Use:   "retell-booking",
	Short: "Appointment booking backend for Retell voice agents",
	Long: `retell-booking answers availability questions and books appointments
on a Google Calendar for voice agents.

It can run as:
  - An HTTP server for voice agent webhooks and MCP clients (default)
  - An MCP server over stdio
  - A command line client for checking slots and booking by hand`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "retell-booking version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newBookCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

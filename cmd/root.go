package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calassist application
var rootCmd = &cobra.Command{
	Use:   "calassist",
	Short: "Schedules calendar events requested by an AI assistant",
	Long: `calassist drives an OpenAI assistant run and adds the events it asks for
to a Google Calendar.

It can run as:
  - A one-shot CLI that sends a scheduling request (default)
  - An MCP (Model Context Protocol) server exposing the same scheduling tool`,
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
	rootCmd.SetVersionTemplate(`{{printf "calassist version %s\n" .Version}}`)

	// If no subcommand is provided, run the schedule command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "schedule")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newAddEventCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

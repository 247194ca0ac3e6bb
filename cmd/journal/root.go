package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd serves when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Journaling service with sentiment analysis and weekly summaries",
	Long: `journal stores journal entries, analyzes their sentiment and themes,
and aggregates them into insights, a theme garden and weekly summaries.

Example usage:
  journal                          # Start the HTTP server
  journal serve --config app.yaml  # Start with a config file
  journal analyze "A calm day."    # Print the analysis of some text`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file; environment variables override it")
	rootCmd.AddCommand(serveCmd, analyzeCmd)
}

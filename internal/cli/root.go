// Package cli implements the command-line interface for the Tug CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tugapp/tug-cli/internal/core"
)

// Global flags
var (
	verbose      bool
	jsonOut      bool
	forceRefresh bool
	timeframe    string
	valueID      string
	startStr     string
	endStr       string
	period       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "tug",
	Short:   "Tug CLI – track values and habits from the terminal",
	Long:    `A command-line client for the Tug habit and values tracker, with a local two-tier cache.`,
	Version: core.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&forceRefresh, "force-refresh", "f", false, "Bypass the cache and re-fetch from the API")
	rootCmd.PersistentFlags().StringVar(&timeframe, "timeframe", core.TimeframeDaily, "Aggregation timeframe (daily/weekly/monthly)")
	rootCmd.PersistentFlags().StringVar(&valueID, "value", "", "Restrict to a single value ID")
	rootCmd.PersistentFlags().StringVar(&startStr, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&endStr, "end", "", "End date, exclusive (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&period, "period", "", "Named period (today, yesterday, this-week, last-week, this-month, last-month)")
}

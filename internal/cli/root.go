// Package cli implements the daylit-tray CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daylit-tray",
	Short: "Control the Daylit tray notification daemon",
	Long: `daylit-tray talks to the Daylit tray daemon: trigger notifications,
inspect the daemon's status, and manage its settings.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

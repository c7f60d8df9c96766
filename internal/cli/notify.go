package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylit-io/daylit-tray/internal/notifier"
)

var (
	notifyText       string
	notifyDurationMs uint32
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a notification to the running daemon",
	Long: `Send a notification to the running Daylit tray daemon.

The daemon is located through its lockfile. If no daemon is running the
command fails instead of queueing the notification.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVarP(&notifyText, "text", "t", "", "notification text (required)")
	notifyCmd.Flags().Uint32VarP(&notifyDurationMs, "duration-ms", "d", 5000, "display duration in milliseconds")
	_ = notifyCmd.MarkFlagRequired("text")
}

func runNotify(cmd *cobra.Command, args []string) error {
	if err := notifier.New().Notify(cmd.Context(), notifyText, notifyDurationMs); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}

	fmt.Println(styleSuccess.Render("Notification sent."))
	return nil
}

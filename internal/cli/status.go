package cli

import (
	"fmt"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/cobra"

	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/notifier"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := notifier.LockfileDir()
	if err != nil {
		return err
	}
	path := lockfile.PathIn(dir)

	info, err := lockfile.Read(path)
	if err != nil {
		fmt.Println("Daemon is not running.")
		fmt.Printf("  %s %s\n", styleLabel.Render("Lockfile:"), styleValue.Render(path))
		return nil
	}

	alive := false
	if process, perr := ps.FindProcess(info.PID); perr == nil && process != nil {
		alive = true
	}

	if alive {
		fmt.Println(styleSuccess.Render("Daemon is running."))
	} else {
		fmt.Println(styleError.Render("Daemon is not running (stale lockfile)."))
	}
	fmt.Printf("  %s %s\n", styleLabel.Render("Address: "), styleValue.Render(fmt.Sprintf("127.0.0.1:%d", info.Port)))
	fmt.Printf("  %s %s\n", styleLabel.Render("PID:     "), styleValue.Render(fmt.Sprintf("%d", info.PID)))
	fmt.Printf("  %s %s\n", styleLabel.Render("Lockfile:"), styleValue.Render(path))
	return nil
}

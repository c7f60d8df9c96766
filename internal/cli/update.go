package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/notifier"
	"github.com/daylit-io/daylit-tray/internal/updater"
)

const daemonBinaryName = "daylit-trayd"

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update daylit-tray to the latest version",
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	fmt.Println("Checking for updates...")

	result, err := updater.CheckForUpdate()
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if !result.Available {
		fmt.Printf("Already up to date (v%s).\n", result.CurrentVersion)
		return nil
	}

	fmt.Printf("Update available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Printf("Release: %s\n", result.ReleaseURL)

	cliAsset := updater.FindAsset(result.Release, updater.CLIAssetName())
	daemonAsset := updater.FindAsset(result.Release, updater.DaemonAssetName())

	if cliAsset == nil {
		return fmt.Errorf("CLI binary not found in release (expected %s)", updater.CLIAssetName())
	}
	if daemonAsset == nil {
		return fmt.Errorf("daemon binary not found in release (expected %s)", updater.DaemonAssetName())
	}

	// Stop a running daemon before swapping its binary.
	daemonPID, daemonWasRunning := runningDaemonPID()
	if daemonWasRunning {
		fmt.Println("Stopping daemon...")
		if err := stopDaemonForUpdate(daemonPID); err != nil {
			fmt.Printf("Warning: failed to stop daemon: %v\n", err)
		}
	}

	fmt.Printf("Downloading CLI (%s)...\n", cliAsset.Name)
	cliTmpPath, err := updater.DownloadAsset(cliAsset)
	if err != nil {
		return fmt.Errorf("failed to download CLI: %w", err)
	}
	defer os.Remove(cliTmpPath)

	fmt.Printf("Downloading daemon (%s)...\n", daemonAsset.Name)
	daemonTmpPath, err := updater.DownloadAsset(daemonAsset)
	if err != nil {
		return fmt.Errorf("failed to download daemon: %w", err)
	}
	defer os.Remove(daemonTmpPath)

	selfPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find self: %w", err)
	}
	selfPath, err = filepath.EvalSymlinks(selfPath)
	if err != nil {
		return fmt.Errorf("failed to resolve self: %w", err)
	}

	fmt.Println("Installing CLI...")
	if err := updater.ReplaceBinary(selfPath, cliTmpPath); err != nil {
		return fmt.Errorf("failed to update CLI: %w", err)
	}

	daemonBinPath := filepath.Join(filepath.Dir(selfPath), daemonBinaryName)
	fmt.Println("Installing daemon...")
	if err := updater.ReplaceBinary(daemonBinPath, daemonTmpPath); err != nil {
		return fmt.Errorf("failed to update daemon: %w", err)
	}

	if daemonWasRunning {
		fmt.Println("Restarting daemon...")
		if err := startDaemon(daemonBinPath); err != nil {
			fmt.Printf("Warning: failed to restart daemon: %v\n", err)
		}
	}

	fmt.Printf("Updated to v%s.\n", result.LatestVersion)
	return nil
}

// runningDaemonPID reads the lockfile and reports the daemon PID if one is
// recorded. The PID may be stale; stopDaemonForUpdate tolerates that.
func runningDaemonPID() (int, bool) {
	dir, err := notifier.LockfileDir()
	if err != nil {
		return 0, false
	}
	info, err := lockfile.Read(lockfile.PathIn(dir))
	if err != nil {
		return 0, false
	}
	return info.PID, true
}

// stopDaemonForUpdate stops the daemon via SIGTERM and waits for it to exit.
func stopDaemonForUpdate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send stop signal: %w", err)
	}

	// The daemon removes its lockfile on shutdown.
	dir, err := notifier.LockfileDir()
	if err != nil {
		return err
	}
	path := lockfile.PathIn(dir)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}
	return fmt.Errorf("daemon did not stop in time")
}

// startDaemon launches the daemon binary detached from this process.
func startDaemon(binPath string) error {
	c := exec.Command(binPath)
	c.Stdout = nil
	c.Stderr = nil
	if err := c.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	return c.Process.Release()
}

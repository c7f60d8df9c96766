// Package lockfile manages the rendezvous lockfile that advertises the
// webhook endpoint (port, pid, secret) to the external notifier.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/models"
)

// Name is the fixed lockfile name inside the lockfile directory.
const Name = "daylit-tray.lock"

// Dir resolves the lockfile directory: the configured lockfile_dir when
// set, otherwise the per-user app config directory.
func Dir(settings *models.Settings) (string, error) {
	if settings != nil && settings.LockfileDir != nil && *settings.LockfileDir != "" {
		return *settings.LockfileDir, nil
	}
	return config.AppConfigDir()
}

// PathIn returns the lockfile path inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, Name)
}

// Write creates the lockfile in dir, creating the directory if missing.
// A stale file from a prior run is overwritten unconditionally. On POSIX
// the file mode is 0600.
func Write(dir string, info *models.LockInfo) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create lockfile directory %s: %w", dir, err)
	}

	path := PathIn(dir)
	if err := os.WriteFile(path, []byte(info.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write lockfile %s: %w", path, err)
	}

	// WriteFile only applies the mode on creation; an overwritten stale
	// file keeps its old permissions without this.
	if runtime.GOOS != "windows" {
		if err := os.Chmod(path, 0o600); err != nil {
			return "", fmt.Errorf("failed to set lockfile permissions: %w", err)
		}
	}

	return path, nil
}

// Read parses the lockfile at path.
func Read(path string) (*models.LockInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile %s: %w", path, err)
	}
	return models.ParseLockInfo(string(content))
}

// Remove deletes the lockfile. A missing file is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile %s: %w", path, err)
	}
	return nil
}

// Migrate moves the lockfile from oldPath into newDir, preserving contents
// byte for byte. When the old file is absent there is nothing to move and
// the returned path is the would-be location in newDir.
func Migrate(oldPath, newDir string) (string, error) {
	newPath := PathIn(newDir)
	if oldPath == newPath {
		return newPath, nil
	}

	content, err := os.ReadFile(oldPath)
	if err != nil {
		if os.IsNotExist(err) {
			return newPath, nil
		}
		return "", fmt.Errorf("failed to read lockfile %s: %w", oldPath, err)
	}

	if err := os.Remove(oldPath); err != nil {
		return "", fmt.Errorf("failed to remove old lockfile %s: %w", oldPath, err)
	}
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create lockfile directory %s: %w", newDir, err)
	}
	if err := os.WriteFile(newPath, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write lockfile %s: %w", newPath, err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(newPath, 0o600); err != nil {
			return "", fmt.Errorf("failed to set lockfile permissions: %w", err)
		}
	}
	return newPath, nil
}

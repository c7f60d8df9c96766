// Package config handles the persisted settings document and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the name of the per-user app config directory.
	AppDirName = "daylit-tray"

	// SettingsFileName is the name of the settings document.
	SettingsFileName = "settings.json"
)

// AppConfigDir returns the path to the per-user app config directory.
func AppConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// SettingsFile returns the path to the settings.json document.
func SettingsFile() (string, error) {
	dir, err := AppConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// EnsureAppConfigDir creates the app config directory if it doesn't exist.
func EnsureAppConfigDir() error {
	dir, err := AppConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

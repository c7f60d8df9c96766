// Package autostart installs and removes the launch-at-login hook for the
// daemon on each supported platform: a systemd user service on Linux, a
// LaunchAgent on macOS, and a registry Run key on Windows.
package autostart

// Manager applies launch-at-login changes for the current platform.
type Manager struct{}

// New returns a Manager for the current platform.
func New() *Manager {
	return &Manager{}
}

// Enable installs the launch-at-login hook pointing at the current
// executable. Calling Enable when already enabled reinstalls the hook.
func (m *Manager) Enable() error {
	return install()
}

// Disable removes the launch-at-login hook. Disabling when not enabled is
// not an error.
func (m *Manager) Disable() error {
	return uninstall()
}

// IsEnabled reports whether the launch-at-login hook is installed.
func (m *Manager) IsEnabled() bool {
	return installed()
}

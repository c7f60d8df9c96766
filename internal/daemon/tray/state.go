// Package tray implements the system tray icon and menu for the daemon.
package tray

// DaemonState provides read-only access to daemon state for the tray.
type DaemonState interface {
	// Port returns the webhook listener port, 0 while starting.
	Port() int
	// NativeNotifications reports the current notification mode.
	NativeNotifications() bool
	// LastNotification returns the most recently accepted notification
	// text, if any.
	LastNotification() (string, bool)
	// RequestShutdown asks the daemon to shut down gracefully.
	RequestShutdown()
}

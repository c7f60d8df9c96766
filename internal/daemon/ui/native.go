package ui

import "github.com/gen2brain/beeep"

// NativeTitle is the fixed title for native OS notifications.
const NativeTitle = "Daylit"

// NativeNotifier shows a notification through the OS facility. Display
// duration is controlled by the OS, not the payload.
type NativeNotifier interface {
	Notify(title, body string) error
}

// BeeepNotifier is the production NativeNotifier backed by the platform
// notification service.
type BeeepNotifier struct{}

// Notify shows a native notification with no icon.
func (BeeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

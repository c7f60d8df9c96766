package ui

import (
	"fmt"
	"sync"
)

// NotificationDialogLabel identifies the single transient notification
// surface. At most one surface with this label exists at any instant.
const NotificationDialogLabel = "notification_dialog"

// EventUpdateNotification is emitted to an existing surface when a new
// payload arrives while it is still visible.
const EventUpdateNotification = "update_notification"

// Geometry of the notification dialog: fixed size, centered horizontally
// on the primary monitor, offset from the top edge.
const (
	DialogWidth     = 1000
	DialogHeight    = 100
	DialogTopOffset = 60
)

// UpdateNotification is the event payload carried by update_notification.
type UpdateNotification struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// SurfaceOptions describes a surface to build.
type SurfaceOptions struct {
	Label       string
	Width       int
	Height      int
	TopOffset   int
	AlwaysOnTop bool
	Frameless   bool
	Transparent bool
}

// NotificationSurfaceOptions returns the options for the notification dialog.
func NotificationSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Label:       NotificationDialogLabel,
		Width:       DialogWidth,
		Height:      DialogHeight,
		TopOffset:   DialogTopOffset,
		AlwaysOnTop: true,
		Frameless:   true,
		Transparent: true,
	}
}

// Surface is a visible notification window owned by the UI collaborator.
// The collaborator destroys it when the user dismisses it or the display
// duration elapses, and removes it from the registry at that point.
type Surface interface {
	Label() string
	Focus() error
	Emit(event string, payload any) error
	Close() error
}

// Factory builds surfaces where the window toolkit requires. A nil factory
// means no toolkit hosts this process and payloads take the native path.
type Factory interface {
	Build(opts SurfaceOptions) (Surface, error)
}

// Registry tracks live surfaces by label and enforces the at-most-one
// invariant for each label.
type Registry struct {
	mu       sync.Mutex
	surfaces map[string]Surface
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Lookup returns the live surface with the given label, if any.
func (r *Registry) Lookup(label string) (Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[label]
	return s, ok
}

// Put registers a surface. It fails if a surface with the same label is
// already live.
func (r *Registry) Put(s Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.surfaces[s.Label()]; exists {
		return fmt.Errorf("surface %q already exists", s.Label())
	}
	r.surfaces[s.Label()] = s
	return nil
}

// Remove drops a surface from the registry. Called by the collaborator
// when the surface is destroyed.
func (r *Registry) Remove(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, label)
}

// CloseNotificationDialog closes a surface only when it is the
// notification dialog, and removes it from the registry.
func (r *Registry) CloseNotificationDialog(s Surface) error {
	if s.Label() != NotificationDialogLabel {
		return nil
	}
	r.Remove(s.Label())
	return s.Close()
}

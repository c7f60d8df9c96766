package ui

import (
	"log"

	"github.com/daylit-io/daylit-tray/internal/models"
)

// Presenter decides what a payload becomes on screen: a native OS
// notification, an update to the existing dialog, or a freshly built one.
type Presenter struct {
	dispatcher Dispatcher
	registry   *Registry
	factory    Factory
	native     NativeNotifier
	settings   func() *models.Settings
}

// NewPresenter wires a presenter. factory may be nil when no window
// toolkit hosts this process; payloads then always take the native path.
func NewPresenter(d Dispatcher, r *Registry, f Factory, n NativeNotifier, settings func() *models.Settings) *Presenter {
	return &Presenter{dispatcher: d, registry: r, factory: f, native: n, settings: settings}
}

// Present submits exactly one work item for the payload. The returned
// error reports submission failure only; failures inside the work item
// are logged and do not propagate back to the webhook response.
func (p *Presenter) Present(payload models.WebhookPayload) error {
	return p.dispatcher.Submit(func() { p.present(payload) })
}

func (p *Presenter) present(payload models.WebhookPayload) {
	settings := p.settings()
	if settings.UseNativeNotifications || p.factory == nil {
		// The OS controls how long a native notification stays up, so
		// duration_ms is ignored on this path.
		if err := p.native.Notify(NativeTitle, payload.Text); err != nil {
			log.Printf("Failed to show native notification: %v", err)
		}
		return
	}

	if surface, ok := p.registry.Lookup(NotificationDialogLabel); ok {
		if err := surface.Focus(); err != nil {
			log.Printf("Failed to focus notification dialog: %v", err)
		}
		update := UpdateNotification{Text: payload.Text, DurationMs: payload.DurationMs}
		if err := surface.Emit(EventUpdateNotification, update); err != nil {
			log.Printf("Failed to emit update_notification: %v", err)
		}
		return
	}

	surface, err := p.factory.Build(NotificationSurfaceOptions())
	if err != nil {
		log.Printf("Failed to build notification dialog: %v", err)
		return
	}
	if err := p.registry.Put(surface); err != nil {
		// Lost the race with a concurrent build; keep the registered one.
		log.Printf("Discarding duplicate notification dialog: %v", err)
		_ = surface.Close()
	}
}

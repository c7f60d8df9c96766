// Package state holds the process-wide daemon state: the settings store
// handle, the last webhook payload, the lockfile path, and the webhook
// secret. Each slot has its own short-lived lock; no lock is ever held
// across a UI hand-off or a subprocess spawn.
package state

import (
	"fmt"
	"sync"

	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/models"
)

// Autostart abstracts the launch-at-login integration so saves stay
// testable without touching systemd/launchd/the registry.
type Autostart interface {
	Enable() error
	Disable() error
}

// AppState is constructed once in main and shared by reference between
// the webhook listener, the scheduler, the tray, and command handlers.
type AppState struct {
	store     *config.Store
	autostart Autostart
	bus       *Bus

	payloadMu sync.Mutex
	payload   *models.WebhookPayload

	lockMu       sync.Mutex
	lockfilePath string

	secretMu sync.Mutex
	secret   string
}

// New creates app state around a settings store. autostart may be nil on
// platforms without launch-at-login support.
func New(store *config.Store, autostart Autostart) *AppState {
	return &AppState{
		store:     store,
		autostart: autostart,
		bus:       NewBus(),
	}
}

// Bus returns the settings event bus.
func (a *AppState) Bus() *Bus {
	return a.bus
}

// Settings loads the current settings. Never fails; unreadable documents
// yield defaults.
func (a *AppState) Settings() *models.Settings {
	return a.store.Load()
}

// SetPayload replaces the last-payload slot. Overwrite wins.
func (a *AppState) SetPayload(p models.WebhookPayload) {
	a.payloadMu.Lock()
	defer a.payloadMu.Unlock()
	a.payload = &p
}

// Payload returns the most recently accepted payload, if any.
func (a *AppState) Payload() (models.WebhookPayload, bool) {
	a.payloadMu.Lock()
	defer a.payloadMu.Unlock()
	if a.payload == nil {
		return models.WebhookPayload{}, false
	}
	return *a.payload, true
}

// SetSecret stores the per-run webhook secret. The secret is never logged.
func (a *AppState) SetSecret(secret string) {
	a.secretMu.Lock()
	defer a.secretMu.Unlock()
	a.secret = secret
}

// Secret returns the per-run webhook secret, empty before listener startup.
func (a *AppState) Secret() string {
	a.secretMu.Lock()
	defer a.secretMu.Unlock()
	return a.secret
}

// SetLockfilePath records where the rendezvous lockfile was written so
// shutdown and migration can find it.
func (a *AppState) SetLockfilePath(path string) {
	a.lockMu.Lock()
	defer a.lockMu.Unlock()
	a.lockfilePath = path
}

// LockfilePath returns the current lockfile location, empty when the
// listener never started.
func (a *AppState) LockfilePath() string {
	a.lockMu.Lock()
	defer a.lockMu.Unlock()
	return a.lockfilePath
}

// SaveSettings applies settings with side effects, in order: launch-at-login,
// lockfile migration on directory change, document persistence, and the
// settings-updated broadcast. The first failure aborts the remainder;
// already-applied steps are not rolled back.
func (a *AppState) SaveSettings(settings *models.Settings) error {
	if err := a.ApplySettings(settings); err != nil {
		return err
	}

	if err := a.store.Save(settings); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}

	a.bus.Publish(Event{Name: EventSettingsUpdated, Settings: settings.Clone()})
	return nil
}

// ApplySettings runs the non-persistence side effects of a settings change:
// launch-at-login reconciliation and lockfile migration. Used on its own
// when settings.json was edited externally and the on-disk document is
// already current.
func (a *AppState) ApplySettings(settings *models.Settings) error {
	if a.autostart != nil {
		var err error
		if settings.LaunchAtLogin {
			err = a.autostart.Enable()
		} else {
			err = a.autostart.Disable()
		}
		if err != nil {
			return fmt.Errorf("failed to update launch at login: %w", err)
		}
	}

	return a.migrateLockfile(settings)
}

// migrateLockfile moves the rendezvous file when lockfile_dir changed.
// A daemon whose listener never started has no lockfile to move.
func (a *AppState) migrateLockfile(settings *models.Settings) error {
	newDir, err := lockfile.Dir(settings)
	if err != nil {
		return fmt.Errorf("failed to resolve lockfile directory: %w", err)
	}

	a.lockMu.Lock()
	defer a.lockMu.Unlock()

	if a.lockfilePath == "" || a.lockfilePath == lockfile.PathIn(newDir) {
		return nil
	}

	newPath, err := lockfile.Migrate(a.lockfilePath, newDir)
	if err != nil {
		return fmt.Errorf("failed to migrate lockfile: %w", err)
	}
	a.lockfilePath = newPath
	return nil
}

package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/models"
)

type fakeAutostart struct {
	calls      []string
	enableErr  error
	disableErr error
}

func (f *fakeAutostart) Enable() error {
	f.calls = append(f.calls, "enable")
	return f.enableErr
}

func (f *fakeAutostart) Disable() error {
	f.calls = append(f.calls, "disable")
	return f.disableErr
}

func newTestState(t *testing.T) (*AppState, *fakeAutostart) {
	t.Helper()
	store := config.NewStore(filepath.Join(t.TempDir(), config.SettingsFileName))
	auto := &fakeAutostart{}
	return New(store, auto), auto
}

func TestPayloadSlotOverwriteWins(t *testing.T) {
	st, _ := newTestState(t)

	if _, ok := st.Payload(); ok {
		t.Error("payload slot should start empty")
	}

	st.SetPayload(models.WebhookPayload{Text: "first", DurationMs: 1000})
	st.SetPayload(models.WebhookPayload{Text: "second", DurationMs: 2000})

	got, ok := st.Payload()
	if !ok {
		t.Fatal("payload slot empty after set")
	}
	if got.Text != "second" || got.DurationMs != 2000 {
		t.Errorf("payload = %+v, want the last write", got)
	}
}

func TestSaveSettingsSideEffectOrder(t *testing.T) {
	st, auto := newTestState(t)

	settings := models.NewSettings()
	settings.LaunchAtLogin = true
	if err := st.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if len(auto.calls) != 1 || auto.calls[0] != "enable" {
		t.Errorf("autostart calls = %v, want [enable]", auto.calls)
	}

	settings.LaunchAtLogin = false
	if err := st.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	if len(auto.calls) != 2 || auto.calls[1] != "disable" {
		t.Errorf("autostart calls = %v, want [enable disable]", auto.calls)
	}

	if got := st.Settings(); got.LaunchAtLogin {
		t.Error("persisted settings should have launch_at_login false")
	}
}

func TestSaveSettingsAutostartFailureAborts(t *testing.T) {
	st, auto := newTestState(t)
	auto.enableErr = errors.New("launchctl exploded")

	settings := models.NewSettings()
	settings.LaunchAtLogin = true
	settings.FontSize = models.FontSizeLarge

	if err := st.SaveSettings(settings); err == nil {
		t.Fatal("SaveSettings should surface the autostart failure")
	}

	// The document must not have been persisted.
	if got := st.Settings(); got.FontSize != models.FontSizeMedium {
		t.Errorf("settings persisted despite aborted save: %+v", got)
	}
}

func TestSaveSettingsMigratesLockfile(t *testing.T) {
	st, _ := newTestState(t)

	oldDir := t.TempDir()
	newDir := filepath.Join(t.TempDir(), "new-locks")

	info := models.NewLockInfo(8421, os.Getpid(), "abcdefghijklmnopqrstuvwxyz012345")
	oldPath, err := lockfile.Write(oldDir, info)
	if err != nil {
		t.Fatal(err)
	}
	st.SetLockfilePath(oldPath)

	settings := models.NewSettings()
	settings.LockfileDir = &newDir
	if err := st.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("old lockfile still present after migration")
	}

	newPath := lockfile.PathIn(newDir)
	if st.LockfilePath() != newPath {
		t.Errorf("lockfile path slot = %q, want %q", st.LockfilePath(), newPath)
	}

	moved, err := lockfile.Read(newPath)
	if err != nil {
		t.Fatalf("migrated lockfile unreadable: %v", err)
	}
	if *moved != *info {
		t.Errorf("rendezvous record changed: %+v != %+v", moved, info)
	}
}

func TestSaveSettingsNoListenerNoMigration(t *testing.T) {
	st, _ := newTestState(t)

	dir := t.TempDir()
	settings := models.NewSettings()
	settings.LockfileDir = &dir

	if err := st.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if _, err := os.Stat(lockfile.PathIn(dir)); !os.IsNotExist(err) {
		t.Error("migration should not create a lockfile when none exists")
	}
}

func TestApplySettingsDoesNotPersist(t *testing.T) {
	st, auto := newTestState(t)

	settings := models.NewSettings()
	settings.FontSize = models.FontSizeLarge
	settings.LaunchAtLogin = true

	if err := st.ApplySettings(settings); err != nil {
		t.Fatalf("ApplySettings failed: %v", err)
	}
	if len(auto.calls) != 1 || auto.calls[0] != "enable" {
		t.Errorf("autostart calls = %v, want [enable]", auto.calls)
	}

	// Only the side effects ran; the document on disk is untouched.
	if got := st.Settings(); got.FontSize != models.FontSizeMedium {
		t.Errorf("ApplySettings persisted the document: %+v", got)
	}
}

func TestSaveSettingsBroadcasts(t *testing.T) {
	st, _ := newTestState(t)

	id, ch := st.Bus().Subscribe()
	defer st.Bus().Unsubscribe(id)

	settings := models.NewSettings()
	settings.FontSize = models.FontSizeSmall
	if err := st.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-ch:
		if e.Name != EventSettingsUpdated {
			t.Errorf("event name = %q, want %q", e.Name, EventSettingsUpdated)
		}
		if e.Settings == nil || e.Settings.FontSize != models.FontSizeSmall {
			t.Errorf("event settings = %+v", e.Settings)
		}
	case <-time.After(time.Second):
		t.Fatal("no settings-updated event received")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	id, ch := bus.Subscribe()

	drained := make(chan struct{})
	go func() {
		// Mirrors the daemon's tray-refresh consumer: ranges until the
		// bus closes the channel.
		for range ch {
		}
		close(drained)
	}()

	bus.Publish(Event{Name: EventSettingsUpdated})
	bus.Unsubscribe(id)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("subscriber loop did not exit after Unsubscribe")
	}

	// Unsubscribing twice must not panic on a closed channel.
	bus.Unsubscribe(id)
}

func TestBusPublishDoesNotBlock(t *testing.T) {
	bus := NewBus()
	id, _ := bus.Subscribe()
	defer bus.Unsubscribe(id)

	// Fill well past the subscriber buffer; Publish must never stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Name: EventSettingsUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

// Package main is the entry point for the daylit-trayd daemon.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/daylit-io/daylit-tray/internal/autostart"
	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/daemon/scheduler"
	"github.com/daylit-io/daylit-tray/internal/daemon/state"
	"github.com/daylit-io/daylit-tray/internal/daemon/tray"
	"github.com/daylit-io/daylit-tray/internal/daemon/ui"
	"github.com/daylit-io/daylit-tray/internal/daemon/watcher"
	"github.com/daylit-io/daylit-tray/internal/daemon/webhook"
	"github.com/daylit-io/daylit-tray/internal/models"
)

func main() {
	// Parse flags
	foreground := flag.Bool("foreground", false, "Run without a system tray (for development and headless sessions)")
	flag.Parse()

	log.SetPrefix("[daylit-trayd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.EnsureAppConfigDir(); err != nil {
		log.Fatalf("Failed to create config directory: %v", err)
	}

	if *foreground {
		log.Println("Running in foreground mode (no system tray)")
		runForeground()
	} else {
		log.Println("Running in background mode (with system tray)")
		runWithTray()
	}
}

// daemon bundles the long-running pieces so both run modes share the same
// startup and shutdown order.
type daemon struct {
	state     *state.AppState
	server    *webhook.Server
	scheduler *scheduler.Scheduler
	watcher   *watcher.Watcher
	dispatch  *ui.SerialDispatcher

	busSubID string
}

func newDaemon() (*daemon, error) {
	store, err := config.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	st := state.New(store, autostart.New())

	dispatch := ui.NewSerialDispatcher()
	go dispatch.Run()

	// No dialog toolkit hosts the daemon, so the presenter runs without a
	// surface factory and every notification takes the native path.
	presenter := ui.NewPresenter(dispatch, ui.NewRegistry(), nil, ui.BeeepNotifier{}, st.Settings)

	// A webhook or watcher failure disables that subsystem but leaves the
	// rest of the daemon running so the user can fix settings and restart.
	srv, err := webhook.New(st, refreshingPresenter{presenter})
	if err != nil {
		log.Printf("Webhook listener unavailable: %v", err)
		srv = nil
	}

	w, err := watcher.New(store.Path())
	if err != nil {
		log.Printf("Settings watcher unavailable: %v", err)
		w = nil
	}

	return &daemon{
		state:     st,
		server:    srv,
		scheduler: scheduler.New(scheduler.ExecRunner{}, st.Settings),
		watcher:   w,
		dispatch:  dispatch,
	}, nil
}

// start launches the background loops. Serve errors are reported on the
// returned channel.
func (d *daemon) start() <-chan error {
	errCh := make(chan error, 1)
	if d.server != nil {
		go func() {
			errCh <- d.server.Serve()
		}()
	}

	d.scheduler.Start()

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			log.Printf("Settings watcher failed to start: %v", err)
		} else {
			go d.watchSettings()
		}
	}

	// Keep the tray menu in step with settings changes, whether they came
	// from the watcher or an in-process save.
	id, ch := d.state.Bus().Subscribe()
	d.busSubID = id
	go func() {
		for range ch {
			tray.Refresh()
		}
	}()

	if d.server != nil {
		log.Printf("Daemon started on port %d (PID %d)", d.server.Port(), os.Getpid())
	} else {
		log.Printf("Daemon started without webhook listener (PID %d)", os.Getpid())
	}
	return errCh
}

// watchSettings reacts to external settings.json edits: side effects run
// as if the daemon had saved the settings itself, then in-process listeners
// get the same broadcast a daemon-side save would produce.
func (d *daemon) watchSettings() {
	for path := range d.watcher.Changed() {
		log.Printf("Settings file changed: %s", path)
		settings := d.state.Settings()
		if err := d.state.ApplySettings(settings); err != nil {
			log.Printf("Failed to apply changed settings: %v", err)
		}
		d.state.Bus().Publish(state.Event{
			Name:     state.EventSettingsUpdated,
			Settings: settings,
		})
	}
}

func (d *daemon) stop() {
	if d.busSubID != "" {
		// Closes the subscriber channel, ending the tray-refresh goroutine.
		d.state.Bus().Unsubscribe(d.busSubID)
	}
	d.scheduler.Stop()
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.server != nil {
		if err := d.server.Close(); err != nil {
			log.Printf("Failed to close webhook listener: %v", err)
		}
	}
	d.dispatch.Close()

	if path := d.state.LockfilePath(); path != "" {
		if err := lockfile.Remove(path); err != nil {
			log.Printf("Failed to remove lockfile: %v", err)
		}
	}
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground() {
	d, err := newDaemon()
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}

	errCh := d.start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("Webhook listener error: %v", err)
		}
	}

	d.stop()
	fmt.Println("Daemon stopped")
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray() {
	var d *daemon

	onStart := func() {
		var err error
		d, err = newDaemon()
		if err != nil {
			log.Fatalf("Failed to start daemon: %v", err)
		}

		errCh := d.start()
		tray.Refresh()

		go func() {
			if err := <-errCh; err != nil {
				log.Printf("Webhook listener error: %v", err)
				tray.Quit()
			}
		}()

		// Handle OS signals: quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		if d != nil {
			d.stop()
		}
		fmt.Println("Daemon stopped")
	}

	// The daemon is nil until onStart runs, so the tray gets a lazy view.
	lazy := &lazyDaemonState{get: func() *daemon { return d }}

	// This blocks the main goroutine until tray exits.
	tray.Run(lazy, onStart, onExit)
}

// refreshingPresenter keeps the tray's last-notification line current:
// every accepted payload triggers a menu refresh after the UI hand-off.
type refreshingPresenter struct {
	inner webhook.Presenter
}

func (r refreshingPresenter) Present(payload models.WebhookPayload) error {
	err := r.inner.Present(payload)
	tray.Refresh()
	return err
}

// lazyDaemonState defers to the daemon once onStart has created it.
type lazyDaemonState struct {
	get func() *daemon
}

func (l *lazyDaemonState) Port() int {
	if d := l.get(); d != nil && d.server != nil {
		return d.server.Port()
	}
	return 0
}

func (l *lazyDaemonState) NativeNotifications() bool {
	if d := l.get(); d != nil {
		return d.state.Settings().UseNativeNotifications
	}
	return false
}

func (l *lazyDaemonState) LastNotification() (string, bool) {
	if d := l.get(); d != nil {
		if payload, ok := d.state.Payload(); ok {
			return payload.Text, true
		}
	}
	return "", false
}

func (l *lazyDaemonState) RequestShutdown() {
	tray.Quit()
}

package tray

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"
)

var (
	state   DaemonState
	onStart func()
	onExit  func()

	portItem *systray.MenuItem
	modeItem *systray.MenuItem
	lastItem *systray.MenuItem
	quitItem *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be
// main on macOS, Cocoa requirement).
// onStartFn is called when the tray is ready (launch the webhook listener
// and scheduler here). onExitFn is called when the tray exits (cleanup).
func Run(s DaemonState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// Refresh updates the menu after the listener has started or settings
// changed.
func Refresh() {
	if state == nil || portItem == nil {
		return
	}
	if port := state.Port(); port > 0 {
		portItem.SetTitle(fmt.Sprintf("Listening on 127.0.0.1:%d", port))
	} else {
		portItem.SetTitle("Webhook listener unavailable")
	}
	if state.NativeNotifications() {
		modeItem.SetTitle("Mode: native notifications")
	} else {
		modeItem.SetTitle("Mode: overlay window")
	}
	if text, ok := state.LastNotification(); ok {
		lastItem.SetTitle("Last: " + truncate(text, 40))
	} else {
		lastItem.SetTitle("No notifications yet")
	}
	updateTooltip()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("Daylit Tray")

	header := systray.AddMenuItem("Daylit Tray", "")
	header.Disable()

	portItem = systray.AddMenuItem("Starting...", "")
	portItem.Disable()

	modeItem = systray.AddMenuItem("", "")
	modeItem.Disable()

	lastItem = systray.AddMenuItem("No notifications yet", "")
	lastItem.Disable()

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit", "Shut down the Daylit tray daemon")

	if onStart != nil {
		onStart()
	}

	Refresh()

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for range quitItem.ClickedCh {
		log.Println("Quit requested from tray menu")
		if state != nil {
			state.RequestShutdown()
		}
	}
}

func updateTooltip() {
	if port := state.Port(); port > 0 {
		systray.SetTooltip(fmt.Sprintf("Daylit Tray (port %d)", port))
	} else {
		systray.SetTooltip("Daylit Tray")
	}
}

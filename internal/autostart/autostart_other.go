//go:build !darwin && !linux && !windows

package autostart

import "fmt"

func install() error {
	return fmt.Errorf("launch at login is not supported on this platform")
}

func uninstall() error {
	return fmt.Errorf("launch at login is not supported on this platform")
}

func installed() bool {
	return false
}

//go:build linux

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const serviceName = "daylit-trayd.service"

var serviceTemplate = template.Must(template.New("service").Parse(`[Unit]
Description=Daylit tray notification daemon
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.ExecutablePath}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`))

type serviceData struct {
	ExecutablePath string
}

func serviceDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "systemd", "user")
}

func servicePath() string {
	dir := serviceDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, serviceName)
}

func install() error {
	svcPath := servicePath()
	if svcPath == "" {
		return fmt.Errorf("could not determine systemd user service path")
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not determine executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("could not resolve executable path: %w", err)
	}

	if err := os.MkdirAll(serviceDir(), 0755); err != nil {
		return fmt.Errorf("could not create systemd user directory: %w", err)
	}

	f, err := os.Create(svcPath)
	if err != nil {
		return fmt.Errorf("could not create service file: %w", err)
	}
	defer f.Close()

	if err := serviceTemplate.Execute(f, serviceData{ExecutablePath: execPath}); err != nil {
		return fmt.Errorf("could not write service file: %w", err)
	}

	if err := exec.Command("systemctl", "--user", "daemon-reload").Run(); err != nil {
		return fmt.Errorf("could not reload systemd: %w", err)
	}
	if err := exec.Command("systemctl", "--user", "enable", serviceName).Run(); err != nil {
		return fmt.Errorf("could not enable service: %w", err)
	}

	return nil
}

func uninstall() error {
	svcPath := servicePath()
	if svcPath == "" {
		return fmt.Errorf("could not determine systemd user service path")
	}

	// Ignore errors from systemctl: the service may not be enabled.
	_ = exec.Command("systemctl", "--user", "disable", serviceName).Run()

	if err := os.Remove(svcPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove service file: %w", err)
	}

	_ = exec.Command("systemctl", "--user", "daemon-reload").Run()

	return nil
}

func installed() bool {
	svcPath := servicePath()
	if svcPath == "" {
		return false
	}
	_, err := os.Stat(svcPath)
	return err == nil
}

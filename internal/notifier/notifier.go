// Package notifier is the client side of the webhook rendezvous: it locates
// a running daemon through the lockfile and delivers a notification to it.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/daemon/webhook"
	"github.com/daylit-io/daylit-tray/internal/models"
)

// daemonExecutablePrefix matches both the daemon binary and dev builds of it.
const daemonExecutablePrefix = "daylit-tray"

// Swapped out in tests.
var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Client sends notifications to a running daemon.
type Client struct {
	httpClient *http.Client
}

// New returns a Client with a short request timeout; the daemon is local so
// anything slow means it is wedged.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify delivers text to the running daemon for the given duration.
// It fails if no healthy daemon can be located through the lockfile.
func (c *Client) Notify(ctx context.Context, text string, durationMs uint32) error {
	dir, err := LockfileDir()
	if err != nil {
		return err
	}

	info, err := findDaemon(lockfile.PathIn(dir))
	if err != nil {
		return err
	}

	payload := models.WebhookPayload{Text: text, DurationMs: durationMs}
	if err := payload.Validate(); err != nil {
		return err
	}

	return c.send(ctx, info, payload)
}

// LockfileDir resolves the directory holding the daemon's lockfile. The
// daemon's settings.json may point at a custom location; absent that, the
// app config directory is used.
func LockfileDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	appDir := filepath.Join(configDir, config.AppDirName)

	// Peek at settings.json for a custom lockfile_dir. Any read or parse
	// failure falls back to the default directory, mirroring the daemon's
	// own tolerant settings load.
	data, err := os.ReadFile(filepath.Join(appDir, config.SettingsFileName))
	if err != nil {
		return appDir, nil
	}
	var doc struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		if doc.Settings.LockfileDir != nil && *doc.Settings.LockfileDir != "" {
			return *doc.Settings.LockfileDir, nil
		}
	}
	return appDir, nil
}

// findDaemon reads the lockfile and verifies that the recorded PID is a live
// daemon process. A stale lockfile left by a crashed daemon fails here
// instead of producing a connection error later.
func findDaemon(path string) (*models.LockInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("daylit-tray is not running")
	}

	info, err := models.ParseLockInfo(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid lockfile: %w", err)
	}

	process, err := findProcessFunc(info.PID)
	if err != nil || process == nil {
		return nil, errors.New("daylit-tray process not running")
	}
	if !strings.HasPrefix(process.Executable(), daemonExecutablePrefix) {
		return nil, fmt.Errorf("process with PID %d is not daylit-tray (is %s)", info.PID, process.Executable())
	}

	return info, nil
}

func (c *Client) send(ctx context.Context, info *models.LockInfo, payload models.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", info.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.SecretHeader, info.Secret)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daylit-tray: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(respBody))
}

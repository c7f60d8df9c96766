package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mitchellh/go-ps"

	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/daemon/webhook"
	"github.com/daylit-io/daylit-tray/internal/models"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 0 }
func (p fakeProcess) Executable() string { return p.executable }

func withFakes(t *testing.T, configDir string, proc ps.Process, procErr error) {
	t.Helper()
	origConfig := userConfigDirFunc
	origFind := findProcessFunc
	userConfigDirFunc = func() (string, error) { return configDir, nil }
	findProcessFunc = func(pid int) (ps.Process, error) { return proc, procErr }
	t.Cleanup(func() {
		userConfigDirFunc = origConfig
		findProcessFunc = origFind
	})
}

func TestLockfileDirDefault(t *testing.T) {
	dir := t.TempDir()
	withFakes(t, dir, nil, nil)

	got, err := LockfileDir()
	if err != nil {
		t.Fatalf("LockfileDir() error: %v", err)
	}
	want := filepath.Join(dir, config.AppDirName)
	if got != want {
		t.Errorf("LockfileDir() = %q, want %q", got, want)
	}
}

func TestLockfileDirCustom(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "locks")
	appDir := filepath.Join(dir, config.AppDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	settings := fmt.Sprintf(`{"settings":{"font_size":"medium","lockfile_dir":%q}}`, custom)
	if err := os.WriteFile(filepath.Join(appDir, config.SettingsFileName), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	withFakes(t, dir, nil, nil)

	got, err := LockfileDir()
	if err != nil {
		t.Fatalf("LockfileDir() error: %v", err)
	}
	if got != custom {
		t.Errorf("LockfileDir() = %q, want %q", got, custom)
	}
}

func TestLockfileDirMalformedSettings(t *testing.T) {
	dir := t.TempDir()
	appDir := filepath.Join(dir, config.AppDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, config.SettingsFileName), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	withFakes(t, dir, nil, nil)

	got, err := LockfileDir()
	if err != nil {
		t.Fatalf("LockfileDir() error: %v", err)
	}
	if got != appDir {
		t.Errorf("LockfileDir() = %q, want default %q", got, appDir)
	}
}

func TestFindDaemon(t *testing.T) {
	writeLock := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), lockfile.Name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("missing lockfile", func(t *testing.T) {
		withFakes(t, t.TempDir(), nil, nil)
		_, err := findDaemon(filepath.Join(t.TempDir(), lockfile.Name))
		if err == nil || !strings.Contains(err.Error(), "not running") {
			t.Errorf("findDaemon() error = %v, want not-running", err)
		}
	})

	t.Run("malformed lockfile", func(t *testing.T) {
		withFakes(t, t.TempDir(), nil, nil)
		_, err := findDaemon(writeLock(t, "garbage"))
		if err == nil || !strings.Contains(err.Error(), "malformed") {
			t.Errorf("findDaemon() error = %v, want malformed", err)
		}
	})

	t.Run("dead process", func(t *testing.T) {
		withFakes(t, t.TempDir(), nil, nil)
		_, err := findDaemon(writeLock(t, "8080|1234|secret"))
		if err == nil || !strings.Contains(err.Error(), "process not running") {
			t.Errorf("findDaemon() error = %v, want process-not-running", err)
		}
	})

	t.Run("foreign process", func(t *testing.T) {
		withFakes(t, t.TempDir(), fakeProcess{pid: 1234, executable: "firefox"}, nil)
		_, err := findDaemon(writeLock(t, "8080|1234|secret"))
		if err == nil || !strings.Contains(err.Error(), "is not daylit-tray") {
			t.Errorf("findDaemon() error = %v, want foreign-process", err)
		}
	})

	t.Run("live daemon", func(t *testing.T) {
		withFakes(t, t.TempDir(), fakeProcess{pid: 1234, executable: "daylit-trayd"}, nil)
		info, err := findDaemon(writeLock(t, "8080|1234|topsecret"))
		if err != nil {
			t.Fatalf("findDaemon() error: %v", err)
		}
		if info.Port != 8080 || info.PID != 1234 || info.Secret != "topsecret" {
			t.Errorf("findDaemon() = %+v", info)
		}
	})
}

func TestNotifyEndToEnd(t *testing.T) {
	var gotSecret string
	var gotPayload []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(webhook.SecretHeader)
		gotPayload, _ = io.ReadAll(r.Body)
		w.Write([]byte("Notification triggered"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	configDir := t.TempDir()
	appDir := filepath.Join(configDir, config.AppDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := lockfile.Write(appDir, models.NewLockInfo(port, 4242, "s3cret")); err != nil {
		t.Fatal(err)
	}
	withFakes(t, configDir, fakeProcess{pid: 4242, executable: "daylit-tray"}, nil)

	if err := New().Notify(context.Background(), "stand up", 5000); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if gotSecret != "s3cret" {
		t.Errorf("secret header = %q, want %q", gotSecret, "s3cret")
	}
	want := `{"text":"stand up","duration_ms":5000}`
	if string(gotPayload) != want {
		t.Errorf("payload = %q, want %q", gotPayload, want)
	}
}

func TestNotifyRejectsInvalidPayload(t *testing.T) {
	configDir := t.TempDir()
	appDir := filepath.Join(configDir, config.AppDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := lockfile.Write(appDir, models.NewLockInfo(8080, 4242, "s")); err != nil {
		t.Fatal(err)
	}
	withFakes(t, configDir, fakeProcess{pid: 4242, executable: "daylit-tray"}, nil)

	if err := New().Notify(context.Background(), "", 5000); err == nil {
		t.Error("Notify() with empty text should fail before sending")
	}
}

func TestNotifyDaemonError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())

	configDir := t.TempDir()
	appDir := filepath.Join(configDir, config.AppDirName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := lockfile.Write(appDir, models.NewLockInfo(port, 4242, "wrong")); err != nil {
		t.Fatal(err)
	}
	withFakes(t, configDir, fakeProcess{pid: 4242, executable: "daylit-tray"}, nil)

	err := New().Notify(context.Background(), "hello", 1000)
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Errorf("Notify() error = %v, want status 401", err)
	}
}

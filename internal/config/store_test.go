package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/daylit-io/daylit-tray/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), SettingsFileName))
}

func TestStoreRoundTrip(t *testing.T) {
	dir := "/tmp/locks"
	path := "/usr/local/bin/daylit"

	tests := []struct {
		name     string
		settings *models.Settings
	}{
		{
			name:     "defaults",
			settings: models.NewSettings(),
		},
		{
			name: "all fields set",
			settings: &models.Settings{
				FontSize:               models.FontSizeLarge,
				LaunchAtLogin:          true,
				LockfileDir:            &dir,
				DaylitPath:             &path,
				UseNativeNotifications: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tempStore(t)
			if err := store.Save(tt.settings); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got := store.Load()
			if !reflect.DeepEqual(got, tt.settings) {
				t.Errorf("Load() = %+v, want %+v", got, tt.settings)
			}
		})
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := tempStore(t)
	got := store.Load()
	if !reflect.DeepEqual(got, models.NewSettings()) {
		t.Errorf("Load() on missing file = %+v, want defaults", got)
	}
}

func TestStoreLoadTolerance(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, s *models.Settings)
	}{
		{
			name:    "malformed JSON falls back to defaults",
			content: `{"settings": {`,
			check: func(t *testing.T, s *models.Settings) {
				if !reflect.DeepEqual(s, models.NewSettings()) {
					t.Errorf("got %+v, want defaults", s)
				}
			},
		},
		{
			name:    "type mismatch falls back to defaults",
			content: `{"settings": {"launch_at_login": "yes"}}`,
			check: func(t *testing.T, s *models.Settings) {
				if !reflect.DeepEqual(s, models.NewSettings()) {
					t.Errorf("got %+v, want defaults", s)
				}
			},
		},
		{
			name:    "missing fields keep defaults",
			content: `{"settings": {"launch_at_login": true}}`,
			check: func(t *testing.T, s *models.Settings) {
				if !s.LaunchAtLogin {
					t.Error("launch_at_login should be true")
				}
				if s.FontSize != models.FontSizeMedium {
					t.Errorf("font_size = %q, want default %q", s.FontSize, models.FontSizeMedium)
				}
				if s.LockfileDir != nil {
					t.Errorf("lockfile_dir = %v, want nil", *s.LockfileDir)
				}
			},
		},
		{
			name:    "unknown fields ignored",
			content: `{"settings": {"font_size": "large", "future_flag": 42}}`,
			check: func(t *testing.T, s *models.Settings) {
				if s.FontSize != models.FontSizeLarge {
					t.Errorf("font_size = %q, want %q", s.FontSize, models.FontSizeLarge)
				}
			},
		},
		{
			name:    "missing settings key falls back to defaults",
			content: `{"other": {}}`,
			check: func(t *testing.T, s *models.Settings) {
				if !reflect.DeepEqual(s, models.NewSettings()) {
					t.Errorf("got %+v, want defaults", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), SettingsFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			tt.check(t, NewStore(path).Load())
		})
	}
}

func TestStoreSaveReplacesDocument(t *testing.T) {
	store := tempStore(t)

	first := models.NewSettings()
	first.FontSize = models.FontSizeSmall
	if err := store.Save(first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := models.NewSettings()
	second.UseNativeNotifications = true
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got := store.Load()
	if got.FontSize != models.FontSizeMedium {
		t.Errorf("font_size = %q, want default after full replace", got.FontSize)
	}
	if !got.UseNativeNotifications {
		t.Error("use_native_notifications should survive the replace")
	}
}

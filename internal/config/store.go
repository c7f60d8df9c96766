package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/daylit-io/daylit-tray/internal/models"
)

// document is the on-disk shape of settings.json. The settings value lives
// under a fixed "settings" key so the external notifier can read it with
// the same schema.
type document struct {
	Settings json.RawMessage `json:"settings"`
}

// Store persists the settings document at a fixed path. Saves fully
// replace the document and serialize through the store mutex; the last
// writer wins.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings document. On absence, malformed JSON, or a type
// mismatch it returns defaults; it never fails visibly. Missing fields
// keep their default values.
func (s *Store) Load() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.NewSettings()
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Settings) == 0 {
		return models.NewSettings()
	}

	// Decode over a default value so absent fields fall back cleanly.
	settings := models.NewSettings()
	if err := json.Unmarshal(doc.Settings, settings); err != nil {
		return models.NewSettings()
	}
	return settings
}

// Save fully replaces the settings document and flushes it to stable
// storage before returning. The write goes through a temp file + rename
// so a crash never leaves a half-written document.
func (s *Store) Save(settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	data, err := json.MarshalIndent(document{Settings: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, SettingsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings document: %w", err)
	}
	return nil
}

// DefaultStore returns a store at the standard settings.json location.
func DefaultStore() (*Store, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

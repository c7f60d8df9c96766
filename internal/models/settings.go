package models

// FontSize values accepted by the notification surface.
const (
	FontSizeSmall  = "small"
	FontSizeMedium = "medium"
	FontSizeLarge  = "large"
)

// Settings represents global application settings.
// This corresponds to the "settings" key inside settings.json in the
// app config directory. Field names match the wire format the external
// notifier reads, so they must not change.
type Settings struct {
	FontSize               string  `json:"font_size"`
	LaunchAtLogin          bool    `json:"launch_at_login"`
	LockfileDir            *string `json:"lockfile_dir"`
	DaylitPath             *string `json:"daylit_path"`
	UseNativeNotifications bool    `json:"use_native_notifications"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		FontSize:               FontSizeMedium,
		LaunchAtLogin:          false,
		LockfileDir:            nil,
		DaylitPath:             nil,
		UseNativeNotifications: false,
	}
}

// Clone returns a deep copy so callers can mutate without racing the
// shared value.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.LockfileDir != nil {
		dir := *s.LockfileDir
		c.LockfileDir = &dir
	}
	if s.DaylitPath != nil {
		p := *s.DaylitPath
		c.DaylitPath = &p
	}
	return &c
}

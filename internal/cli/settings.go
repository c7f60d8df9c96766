package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daylit-io/daylit-tray/internal/autostart"
	"github.com/daylit-io/daylit-tray/internal/config"
	"github.com/daylit-io/daylit-tray/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change daemon settings",
	Long: `Inspect and change the daemon's settings.

Changes are written to settings.json; a running daemon picks them up
through its settings watcher without a restart.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting.

Keys:
  font_size                 small, medium, or large
  launch_at_login           true or false
  lockfile_dir              directory path, or "" to reset to the default
  daylit_path               path to the daylit binary, or "" for PATH lookup
  use_native_notifications  true or false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := config.DefaultStore()
	if err != nil {
		return err
	}
	settings := store.Load()

	printSetting := func(key, value string) {
		fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-25s", key)), styleValue.Render(value))
	}

	fmt.Printf("%s %s\n", styleLabel.Render("Settings file:"), styleValue.Render(store.Path()))
	printSetting("font_size", settings.FontSize)
	printSetting("launch_at_login", strconv.FormatBool(settings.LaunchAtLogin))
	printSetting("lockfile_dir", stringOrDefault(settings.LockfileDir))
	printSetting("daylit_path", stringOrDefault(settings.DaylitPath))
	printSetting("use_native_notifications", strconv.FormatBool(settings.UseNativeNotifications))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	store, err := config.DefaultStore()
	if err != nil {
		return err
	}
	settings := store.Load()

	switch key {
	case "font_size":
		if value != models.FontSizeSmall && value != models.FontSizeMedium && value != models.FontSizeLarge {
			return fmt.Errorf("invalid font_size %q (want small, medium, or large)", value)
		}
		settings.FontSize = value
	case "launch_at_login":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid launch_at_login %q (want true or false)", value)
		}
		settings.LaunchAtLogin = enabled
		// Apply here so the change takes effect even with no daemon
		// running; a running daemon re-applies it from its settings
		// watcher, which is idempotent.
		mgr := autostart.New()
		if enabled {
			err = mgr.Enable()
		} else {
			err = mgr.Disable()
		}
		if err != nil {
			return fmt.Errorf("failed to update launch at login: %w", err)
		}
	case "lockfile_dir":
		settings.LockfileDir = optionalString(value)
	case "daylit_path":
		settings.DaylitPath = optionalString(value)
	case "use_native_notifications":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid use_native_notifications %q (want true or false)", value)
		}
		settings.UseNativeNotifications = enabled
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}

	if err := store.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println(styleSuccess.Render("Settings updated."))
	return nil
}

func stringOrDefault(s *string) string {
	if s == nil || *s == "" {
		return "(default)"
	}
	return *s
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

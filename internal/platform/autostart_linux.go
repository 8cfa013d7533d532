//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func (autostart *Autostart) entryPath(appName string) (string, error) {
	if autostart.home != "" {
		return filepath.Join(autostart.home, ".config", "autostart", slugName(appName)+".desktop"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slugName(appName)+".desktop"), nil
}

func (autostart *Autostart) enable(entry LaunchEntry) error {
	path, err := autostart.entryPath(entry.AppName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(buildDesktopEntry(entry)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (autostart *Autostart) disable(appName string) error {
	path, err := autostart.entryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (autostart *Autostart) enabled(appName string) (bool, error) {
	path, err := autostart.entryPath(appName)
	if err != nil {
		return false, fmt.Errorf("query autostart: %w", err)
	}
	return fileExists(path)
}

func buildDesktopEntry(entry LaunchEntry) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Pomodoro timer for markdown checklists
Exec=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`, entry.AppName, commandLine(entry))
}

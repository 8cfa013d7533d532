package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// LaunchEntry describes how the tray app is started at login.
type LaunchEntry struct {
	AppName  string
	ExecPath string
	Args     []string
}

func (entry LaunchEntry) validate(action string) error {
	if strings.TrimSpace(entry.AppName) == "" {
		return fmt.Errorf("%s autostart: app name is empty", action)
	}
	if action == "enable" && entry.ExecPath == "" {
		return fmt.Errorf("%s autostart: exec path is empty", action)
	}
	return nil
}

// Autostart registers the app with the login session of the current user.
type Autostart struct {
	// home overrides the user's home directory in tests.
	home string
}

// NewAutostart returns the autostart registry for this OS.
func NewAutostart() *Autostart {
	return &Autostart{}
}

// Enable writes or replaces the launch entry.
func (autostart *Autostart) Enable(entry LaunchEntry) error {
	if err := entry.validate("enable"); err != nil {
		return err
	}
	return autostart.enable(entry)
}

// Disable removes the launch entry. A missing entry is not an error.
func (autostart *Autostart) Disable(appName string) error {
	if err := (LaunchEntry{AppName: appName}).validate("disable"); err != nil {
		return err
	}
	return autostart.disable(appName)
}

// Enabled reports whether a launch entry exists.
func (autostart *Autostart) Enabled(appName string) (bool, error) {
	if err := (LaunchEntry{AppName: appName}).validate("query"); err != nil {
		return false, err
	}
	return autostart.enabled(appName)
}

// ErrAutostartUnsupported indicates there is no autostart mechanism here.
var ErrAutostartUnsupported = errors.New("autostart unsupported")

func slugName(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	return strings.ReplaceAll(name, " ", "-")
}

func commandLine(entry LaunchEntry) string {
	return quoteParts(append([]string{entry.ExecPath}, entry.Args...))
}

// quoteParts joins parts with spaces, quoting those that contain one.
func quoteParts(parts []string) string {
	quoted := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.ContainsAny(part, " \t") && !strings.HasPrefix(part, `"`) {
			part = `"` + part + `"`
		}
		quoted = append(quoted, part)
	}
	return strings.Join(quoted, " ")
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

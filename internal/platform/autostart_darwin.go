//go:build darwin

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (autostart *Autostart) plistPath(appName string) (string, error) {
	home := autostart.home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func (autostart *Autostart) enable(entry LaunchEntry) error {
	path, err := autostart.plistPath(entry.AppName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}
	content := buildLaunchAgentPlist(launchAgentLabel(entry.AppName), entry)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

func (autostart *Autostart) disable(appName string) error {
	path, err := autostart.plistPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func (autostart *Autostart) enabled(appName string) (bool, error) {
	path, err := autostart.plistPath(appName)
	if err != nil {
		return false, fmt.Errorf("query autostart: %w", err)
	}
	return fileExists(path)
}

func launchAgentLabel(appName string) string {
	return "com.pomotasks." + slugName(appName)
}

// buildLaunchAgentPlist passes every argument as its own array element, so
// nothing needs quoting.
func buildLaunchAgentPlist(label string, entry LaunchEntry) string {
	var arguments strings.Builder
	for _, part := range append([]string{entry.ExecPath}, entry.Args...) {
		fmt.Fprintf(&arguments, "\t\t<string>%s</string>\n", xmlEscape(part))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, xmlEscape(label), arguments.String())
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(value string) string {
	return xmlReplacer.Replace(value)
}

//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (autostart *Autostart) enable(entry LaunchEntry) error {
	entry.ExecPath = strings.Trim(entry.ExecPath, `"`)
	output, err := exec.Command("reg", "add", registryRunKey,
		"/v", entry.AppName, "/t", "REG_SZ", "/d", windowsCommandLine(entry), "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (autostart *Autostart) disable(appName string) error {
	enabled, err := autostart.enabled(appName)
	if err != nil || !enabled {
		return err
	}
	output, err := exec.Command("reg", "delete", registryRunKey, "/v", appName, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// enabled treats any failure of reg query as a missing value.
func (autostart *Autostart) enabled(appName string) (bool, error) {
	if err := exec.Command("reg", "query", registryRunKey, "/v", appName).Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("query autostart: %w", err)
	}
	return true, nil
}

// windowsCommandLine always quotes the executable, which may live under
// Program Files.
func windowsCommandLine(entry LaunchEntry) string {
	line := `"` + entry.ExecPath + `"`
	if len(entry.Args) > 0 {
		line += " " + quoteParts(entry.Args)
	}
	return line
}

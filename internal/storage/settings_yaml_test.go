package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pomotasks/internal/ui/preferences"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadSettingsFile failed: %v", err)
	}
	if settings != preferences.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", settingsFileName)

	settings := preferences.DefaultSettings()
	settings.FullGlyph = "F"
	settings.HalfGlyph = "H"
	settings.QuarterGlyph = "Q"
	settings.WorkDuration = 50 * time.Minute
	settings.BreakDuration = 10 * time.Minute
	settings.ChecklistPath = "/notes/today.md"
	settings.AutoStartBreak = true
	settings.IdlePauseEnabled = false
	settings.IdlePauseAfter = 3 * time.Minute

	if err := SaveSettingsFile(path, settings); err != nil {
		t.Fatalf("SaveSettingsFile failed: %v", err)
	}
	loaded, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile failed: %v", err)
	}
	if loaded != settings {
		t.Fatalf("loaded %+v, want %+v", loaded, settings)
	}
}

func TestLoadSettingsIgnoresInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	content := "full_glyph: \"🍓\"\nwork_minutes: -5\nbreak_minutes: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile failed: %v", err)
	}
	defaults := preferences.DefaultSettings()
	if settings.FullGlyph != defaults.FullGlyph {
		t.Errorf("duplicate glyph accepted: %q", settings.FullGlyph)
	}
	if settings.WorkDuration != defaults.WorkDuration {
		t.Errorf("negative work minutes accepted: %v", settings.WorkDuration)
	}
	if settings.BreakDuration != 10*time.Minute {
		t.Errorf("BreakDuration = %v", settings.BreakDuration)
	}
}

func TestLoadSettingsBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	if err := os.WriteFile(path, []byte("work_minutes: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettingsFile(path); err == nil || !strings.Contains(err.Error(), "parse settings yaml") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSettingsPathUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	path, err := SettingsPath("pomotasks")
	if err != nil {
		t.Fatalf("SettingsPath failed: %v", err)
	}
	if filepath.Base(path) != settingsFileName || filepath.Base(filepath.Dir(path)) != "pomotasks" {
		t.Fatalf("unexpected path %q", path)
	}
}

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)
	return dir
}

func TestSaveAndLoadSettingsByAppName(t *testing.T) {
	useTempConfigDir(t)

	settings := preferences.DefaultSettings()
	settings.WorkDuration = 45 * time.Minute
	settings.ChecklistPath = "/notes"
	if err := SaveSettings("pomotasks", settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	path, err := SettingsPath("pomotasks")
	if err != nil {
		t.Fatalf("SettingsPath failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not written at %q: %v", path, err)
	}

	loaded, err := LoadSettings("pomotasks")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded != settings {
		t.Fatalf("loaded %+v, want %+v", loaded, settings)
	}
}

func TestLoadSettingsByAppNameDefaults(t *testing.T) {
	useTempConfigDir(t)

	loaded, err := LoadSettings("pomotasks")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded != preferences.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", loaded)
	}
}
